package xrm

import (
	"context"
	"errors"
	"sync"
)

// ErrNoService is returned when a query runs on a context without a service.
var ErrNoService = errors.New("xrm: no organization service")

// OrganizationRequest is a message invocation: a message name and its
// named parameters.
type OrganizationRequest struct {
	RequestName string
	Parameters  map[string]any
}

// NewOrganizationRequest returns an empty request.
func NewOrganizationRequest() *OrganizationRequest {
	return &OrganizationRequest{Parameters: make(map[string]any)}
}

// SetParameter stores a request parameter. A nil pointer is stored as nil.
func (r *OrganizationRequest) SetParameter(name string, v any) {
	if r.Parameters == nil {
		r.Parameters = make(map[string]any)
	}
	if isNil(v) {
		v = nil
	}
	r.Parameters[name] = v
}

// GetParameter returns a request parameter as T, or the zero value.
func GetParameter[T any](r *OrganizationRequest, name string) T {
	if r == nil {
		var zero T
		return zero
	}
	return convert[T](r.Parameters[name])
}

// OrganizationResponse is the result of a message invocation.
type OrganizationResponse struct {
	ResponseName string
	Results      map[string]any
}

// NewOrganizationResponse returns an empty response.
func NewOrganizationResponse() *OrganizationResponse {
	return &OrganizationResponse{Results: make(map[string]any)}
}

// GetResult returns a response result as T, or the zero value.
func GetResult[T any](r *OrganizationResponse, name string) T {
	if r == nil {
		var zero T
		return zero
	}
	return convert[T](r.Results[name])
}

// OrganizationService executes messages and queries against an organization.
type OrganizationService interface {
	Execute(ctx context.Context, req *OrganizationRequest) (*OrganizationResponse, error)
	RetrieveMultiple(ctx context.Context, q QueryBase) (*EntityCollection, error)
}

// ServiceContext binds queries to a service and tracks the records they
// return.
type ServiceContext struct {
	service OrganizationService

	mu      sync.Mutex
	tracked map[*Entity]struct{}
}

// NewServiceContext returns a context over service.
func NewServiceContext(service OrganizationService) *ServiceContext {
	return &ServiceContext{service: service, tracked: make(map[*Entity]struct{})}
}

// Service returns the bound service.
func (c *ServiceContext) Service() OrganizationService { return c.service }

// Attach starts tracking records.
func (c *ServiceContext) Attach(records ...Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range records {
		if base := baseOf(r); base != nil {
			c.tracked[base] = struct{}{}
		}
	}
}

// IsAttached reports whether a record is tracked.
func (c *ServiceContext) IsAttached(r Record) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.tracked[baseOf(r)]
	return ok
}

// Execute runs a request on the bound service.
func (c *ServiceContext) Execute(ctx context.Context, req *OrganizationRequest) (*OrganizationResponse, error) {
	if c.service == nil {
		return nil, ErrNoService
	}
	return c.service.Execute(ctx, req)
}
