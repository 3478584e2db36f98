package policy

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/laughtale01/Scratch-sub001/pkg/access"
)

var noon = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

type reqOpts struct {
	role     access.Role
	category access.Category
	resType  string
	ip       string
	at       time.Time
}

func buildContext(t *testing.T, o reqOpts) *access.Context {
	t.Helper()
	if o.role == "" {
		o.role = access.RoleStudent
	}
	if o.category == "" {
		o.category = access.CategoryBasic
	}
	if o.resType == "" {
		o.resType = "world"
	}
	if o.ip == "" {
		o.ip = "10.0.0.5"
	}
	if o.at.IsZero() {
		o.at = noon
	}
	ctx, err := access.NewContextBuilder().
		User(access.NewUser("pat", o.role, o.at)).
		Operation(access.NewOperation("doThing", o.category, access.RoleStudent)).
		Resource(access.NewResource("main", o.resType, access.RoleStudent)).
		Network(access.NetworkContext{IP: o.ip, ClientID: "c-1"}).
		Time(access.NewTimeContext(o.at)).
		Build()
	require.NoError(t, err)
	return ctx
}

// countingMetrics records how often each policy was considered.
type countingMetrics struct {
	mu         sync.Mutex
	considered map[string]int
	faults     map[string]int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{considered: map[string]int{}, faults: map[string]int{}}
}

func (m *countingMetrics) PolicyConsidered(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.considered[name]++
}

func (m *countingMetrics) PolicyFault(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.faults[name]++
}

func (m *countingMetrics) consideredCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.considered[name]
}

func (m *countingMetrics) faultCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.faults[name]
}
