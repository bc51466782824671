package services

import "testing"

// Requirement: every lifecycle operation has exactly one endpoint and the
// registry starts with all of them.
func TestNewEndpointRegistry(t *testing.T) {
	reg := NewEndpointRegistry()

	got := reg.Endpoints()
	want := len(BaseEndpoints())
	if len(got) != want {
		t.Fatalf("Endpoints() count = %d, want %d", len(got), want)
	}

	paths := make(map[string]bool)
	for _, ep := range got {
		paths[ep.Method+":"+ep.Path] = true
	}
	for _, required := range []string{
		"POST:/register",
		"POST:/login",
		"POST:/logout",
		"GET:/verify-email",
		"POST:/resend-verification",
		"POST:/forgot-password",
		"POST:/reset-password",
	} {
		if !paths[required] {
			t.Errorf("missing endpoint %s", required)
		}
	}
}

// Requirement: extra endpoints register atomically; any conflict rejects the
// whole batch.
func TestEndpointRegistry_RegisterExtra(t *testing.T) {
	tests := []struct {
		name    string
		extra   []Endpoint
		wantErr bool
	}{
		{
			name: "new endpoint registers",
			extra: []Endpoint{
				{Path: "/sessions", Method: "GET"},
			},
		},
		{
			name: "conflict with base endpoint rejected",
			extra: []Endpoint{
				{Path: "/login", Method: "POST"},
			},
			wantErr: true,
		},
		{
			name: "duplicate within batch rejected",
			extra: []Endpoint{
				{Path: "/sessions", Method: "GET"},
				{Path: "/sessions", Method: "GET"},
			},
			wantErr: true,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			reg := NewEndpointRegistry()
			before := len(reg.Endpoints())

			err := reg.RegisterExtra(test.extra)

			if test.wantErr {
				if err == nil {
					t.Fatal("RegisterExtra() should fail")
				}
				if len(reg.Endpoints()) != before {
					t.Error("failed batch must not register anything")
				}
				return
			}
			if err != nil {
				t.Fatalf("RegisterExtra() error = %v", err)
			}
			if len(reg.Endpoints()) != before+len(test.extra) {
				t.Error("batch should register all endpoints")
			}
		})
	}
}
