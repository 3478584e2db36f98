package access

import "testing"

func TestParseResourceType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want ResourceType
	}{
		{"world", ResourceWorld},
		{"WORLD", ResourceWorld},
		{" Admin ", ResourceAdmin},
		{"settings", ResourceConfig},
		{"class", ResourceClassroom},
		{"spaceship", ResourceGeneric},
		{"", ResourceGeneric},
	}
	for _, tt := range tests {
		if got := ParseResourceType(tt.in); got != tt.want {
			t.Errorf("ParseResourceType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResourceType_IsSensitive(t *testing.T) {
	t.Parallel()

	for _, rt := range []ResourceType{ResourceAdmin, ResourceConfig, ResourceSecurity} {
		if !rt.IsSensitive() {
			t.Errorf("%q should be sensitive", rt)
		}
	}
	for _, rt := range []ResourceType{ResourceWorld, ResourceChat, ResourceGeneric} {
		if rt.IsSensitive() {
			t.Errorf("%q should not be sensitive", rt)
		}
	}
}

func TestResource_Key(t *testing.T) {
	t.Parallel()

	r := NewResource("console", "administration", RoleAdmin)
	if r.Key() != "admin:console" {
		t.Errorf("Key() = %q, want admin:console", r.Key())
	}
}

func TestOperation_IsBulk(t *testing.T) {
	t.Parallel()

	for name, want := range map[string]bool{
		"placeBlock":      false,
		"batchPlace":      true,
		"BulkDelete":      true,
		"massTeleport":    true,
		"sendChatMessage": false,
	} {
		op := NewOperation(name, CategoryBuilding, RoleStudent)
		if got := op.IsBulk(); got != want {
			t.Errorf("IsBulk(%q) = %v, want %v", name, got, want)
		}
	}
}
