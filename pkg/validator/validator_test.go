package validator

import "testing"

type point struct {
	Lat float64 `json:"lat" validate:"latitude"`
	Lng float64 `json:"lng" validate:"longitude"`
}

type request struct {
	Kind   string  `json:"kind" validate:"required,oneof=a b"`
	Title  string  `json:"title" validate:"max=5"`
	Points []point `json:"points" validate:"required,min=1,dive"`
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name string
		req  request
		want map[string]string
	}{
		{
			name: "valid",
			req:  request{Kind: "a", Points: []point{{Lat: 1, Lng: 2}}},
			want: map[string]string{},
		},
		{
			name: "missing fields",
			req:  request{},
			want: map[string]string{
				"kind":   "must be provided",
				"points": "must be provided",
			},
		},
		{
			name: "nested and params",
			req:  request{Kind: "c", Title: "too long", Points: []point{{Lat: 91, Lng: 0}}},
			want: map[string]string{
				"kind":          "must be one of: a b",
				"title":         "must be at most 5 characters",
				"points[0].lat": "must be a valid latitude (-90 to 90)",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			v.Struct(&tt.req)

			if len(v.Errors) != len(tt.want) {
				t.Fatalf("errors = %v, want %v", v.Errors, tt.want)
			}
			for k, msg := range tt.want {
				if v.Errors[k] != msg {
					t.Errorf("errors[%q] = %q, want %q", k, v.Errors[k], msg)
				}
			}
			if v.Valid() != (len(tt.want) == 0) {
				t.Errorf("Valid() = %v", v.Valid())
			}
		})
	}
}

func TestCheckKeepsFirstMessage(t *testing.T) {
	v := New()
	v.Check(false, "limit", "first")
	v.Check(false, "limit", "second")
	v.Check(true, "other", "ignored")

	if v.Errors["limit"] != "first" || len(v.Errors) != 1 {
		t.Fatalf("errors = %v", v.Errors)
	}
}
