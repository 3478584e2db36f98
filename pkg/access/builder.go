package access

import (
	"errors"
	"time"
)

var (
	ErrMissingUser      = errors.New("access: user is required")
	ErrMissingOperation = errors.New("access: operation is required")
	ErrMissingResource  = errors.New("access: resource is required")
)

// ContextBuilder assembles a Context. A builder is not safe for concurrent use;
// the Context it builds is.
type ContextBuilder struct {
	user       *User
	operation  *Operation
	resource   *Resource
	network    *NetworkContext
	time       *TimeContext
	session    *SessionContext
	device     *DeviceContext
	attributes map[string]any
	now        func() time.Time
}

// NewContextBuilder returns an empty builder.
func NewContextBuilder() *ContextBuilder {
	return &ContextBuilder{now: time.Now}
}

func (b *ContextBuilder) User(u *User) *ContextBuilder {
	b.user = u
	return b
}

func (b *ContextBuilder) Operation(o *Operation) *ContextBuilder {
	b.operation = o
	return b
}

func (b *ContextBuilder) Resource(r *Resource) *ContextBuilder {
	b.resource = r
	return b
}

func (b *ContextBuilder) Network(n NetworkContext) *ContextBuilder {
	b.network = &n
	return b
}

func (b *ContextBuilder) Time(t TimeContext) *ContextBuilder {
	b.time = &t
	return b
}

func (b *ContextBuilder) Session(s SessionContext) *ContextBuilder {
	b.session = &s
	return b
}

func (b *ContextBuilder) Device(d DeviceContext) *ContextBuilder {
	b.device = &d
	return b
}

// Attribute sets a forward-compatible extension attribute.
func (b *ContextBuilder) Attribute(key string, value any) *ContextBuilder {
	if b.attributes == nil {
		b.attributes = make(map[string]any)
	}
	b.attributes[key] = value
	return b
}

// Clock overrides the source of "now" used for defaults.
func (b *ContextBuilder) Clock(now func() time.Time) *ContextBuilder {
	if now != nil {
		b.now = now
	}
	return b
}

// Build validates the required parts and fills defaults for the rest.
func (b *ContextBuilder) Build() (*Context, error) {
	var errs []error
	if b.user == nil {
		errs = append(errs, ErrMissingUser)
	}
	if b.operation == nil {
		errs = append(errs, ErrMissingOperation)
	}
	if b.resource == nil {
		errs = append(errs, ErrMissingResource)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	ctx := &Context{
		user:      *b.user,
		operation: *b.operation,
		resource:  *b.resource,
	}
	if ctx.resource.Type == "" {
		ctx.resource.Type = ResourceGeneric
	}

	if b.time != nil && !b.time.CurrentTime.IsZero() {
		ctx.time = *b.time
	} else {
		ctx.time = NewTimeContext(b.now())
	}
	if b.network != nil {
		ctx.network = *b.network
	} else {
		ctx.network = DefaultNetworkContext()
	}
	if b.session != nil {
		ctx.session = *b.session
		if ctx.session.SessionStart.IsZero() {
			ctx.session.SessionStart = ctx.time.CurrentTime
		}
	} else {
		ctx.session = defaultSession(ctx.time.CurrentTime)
	}
	if b.device != nil {
		ctx.device = *b.device
		if ctx.device.DeviceType == "" {
			ctx.device.DeviceType = DeviceUnknown
		}
	} else {
		ctx.device = DefaultDeviceContext()
	}

	ctx.attributes = make(map[string]any, len(b.attributes))
	for k, v := range b.attributes {
		ctx.attributes[k] = v
	}
	return ctx, nil
}
