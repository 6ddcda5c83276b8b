package trm

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
)

// fakeTx embeds pgx.Tx so only the methods used by Manager need an implementation.
type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit(context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	t.rolledBack = true
	return nil
}

type fakeDB struct {
	begins int
	err    error
	tx     *fakeTx
}

func (d *fakeDB) Begin(context.Context) (pgx.Tx, error) {
	if d.err != nil {
		return nil, d.err
	}
	d.begins++
	d.tx = &fakeTx{}
	return d.tx, nil
}

func TestManager_Commit(t *testing.T) {
	db := &fakeDB{}
	m := New(db)

	err := m.Do(context.Background(), func(ctx context.Context) error {
		if _, ok := TxFromContext(ctx); !ok {
			t.Fatal("transaction missing from context")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !db.tx.committed || db.tx.rolledBack {
		t.Fatalf("expected commit only, got %+v", db.tx)
	}
}

func TestManager_RollbackOnError(t *testing.T) {
	db := &fakeDB{}
	m := New(db)
	boom := errors.New("boom")

	err := m.Do(context.Background(), func(context.Context) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if db.tx.committed || !db.tx.rolledBack {
		t.Fatalf("expected rollback only, got %+v", db.tx)
	}
}

func TestManager_NestedJoinsOuter(t *testing.T) {
	db := &fakeDB{}
	m := New(db)

	err := m.Do(context.Background(), func(ctx context.Context) error {
		return m.Do(ctx, func(context.Context) error { return nil })
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if db.begins != 1 {
		t.Fatalf("begins = %d, want 1", db.begins)
	}
}

func TestManager_BeginFailure(t *testing.T) {
	db := &fakeDB{err: errors.New("pool closed")}
	m := New(db)

	called := false
	err := m.Do(context.Background(), func(context.Context) error {
		called = true
		return nil
	})
	if err == nil || called {
		t.Fatalf("err = %v, called = %v", err, called)
	}
}
