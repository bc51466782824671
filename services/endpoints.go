package services

import "fmt"

// Endpoint is a framework-agnostic description of one boundary operation.
// Path and Method are templates; adapters attach their own handlers.
type Endpoint struct {
	Path     string
	Method   string
	Metadata EndpointMetadata
}

// EndpointMetadata carries OpenAPI information for an endpoint.
type EndpointMetadata struct {
	OperationID string
	Description string
}

// BaseEndpoints returns the endpoint specifications for all credential
// lifecycle operations. Adapters (Fiber today, others later) share these
// definitions and provide framework-specific handlers.
func BaseEndpoints() []Endpoint {
	return []Endpoint{
		{
			Path:   "/register",
			Method: "POST",
			Metadata: EndpointMetadata{
				OperationID: "registerWithEmailAndPassword",
				Description: "Register a new user and issue a first access token",
			},
		},
		{
			Path:   "/login",
			Method: "POST",
			Metadata: EndpointMetadata{
				OperationID: "loginWithEmailAndPassword",
				Description: "Authenticate a user and issue an access token",
			},
		},
		{
			Path:   "/logout",
			Method: "POST",
			Metadata: EndpointMetadata{
				OperationID: "logout",
				Description: "Revoke the presented access token",
			},
		},
		{
			Path:   "/verify-email",
			Method: "GET",
			Metadata: EndpointMetadata{
				OperationID: "verifyEmail",
				Description: "Prove email ownership via a signed link grant",
			},
		},
		{
			Path:   "/resend-verification",
			Method: "POST",
			Metadata: EndpointMetadata{
				OperationID: "resendVerification",
				Description: "Re-send the verification email to the authenticated user",
			},
		},
		{
			Path:   "/forgot-password",
			Method: "POST",
			Metadata: EndpointMetadata{
				OperationID: "requestPasswordReset",
				Description: "Issue a password reset token and email the recovery link",
			},
		},
		{
			Path:   "/reset-password",
			Method: "POST",
			Metadata: EndpointMetadata{
				OperationID: "resetPassword",
				Description: "Consume a reset token and install a new password",
			},
		},
	}
}

// EndpointRegistry manages a collection of framework-agnostic endpoints and
// detects duplicate METHOD:PATH combinations, e.g. when plugins add routes.
type EndpointRegistry struct {
	endpoints map[string]*Endpoint
}

// NewEndpointRegistry creates a registry with all base endpoints
// pre-registered.
func NewEndpointRegistry() *EndpointRegistry {
	reg := &EndpointRegistry{
		endpoints: make(map[string]*Endpoint),
	}
	base := BaseEndpoints()
	for i := range base {
		_ = reg.register(&base[i])
	}
	return reg
}

func (r *EndpointRegistry) register(ep *Endpoint) error {
	key := fmt.Sprintf("%s:%s", ep.Method, ep.Path)
	if _, exists := r.endpoints[key]; exists {
		return fmt.Errorf("endpoint conflict: %s %s already registered", ep.Method, ep.Path)
	}
	r.endpoints[key] = ep
	return nil
}

// RegisterExtra registers additional endpoints. If any conflicts with an
// existing endpoint or with another endpoint in the same batch, nothing is
// registered.
func (r *EndpointRegistry) RegisterExtra(endpoints []Endpoint) error {
	seen := make(map[string]bool)
	for i := range endpoints {
		key := fmt.Sprintf("%s:%s", endpoints[i].Method, endpoints[i].Path)
		if _, exists := r.endpoints[key]; exists {
			return fmt.Errorf("endpoint conflict: %s %s already registered", endpoints[i].Method, endpoints[i].Path)
		}
		if seen[key] {
			return fmt.Errorf("duplicate endpoint in batch: %s %s", endpoints[i].Method, endpoints[i].Path)
		}
		seen[key] = true
	}
	for i := range endpoints {
		r.endpoints[fmt.Sprintf("%s:%s", endpoints[i].Method, endpoints[i].Path)] = &endpoints[i]
	}
	return nil
}

// Endpoints returns all registered endpoints.
func (r *EndpointRegistry) Endpoints() []*Endpoint {
	result := make([]*Endpoint, 0, len(r.endpoints))
	for _, ep := range r.endpoints {
		result = append(result, ep)
	}
	return result
}
