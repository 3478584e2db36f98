package policy

import (
	"errors"
	"fmt"
	"math"

	"github.com/cedar-policy/cedar-go"
)

// Cedar entity types exposed to cedar conditions.
//
//	Classroom::User      role, role_rank
//	Classroom::Action    category
//	Classroom::Resource  type, name, min_rank
//
// The request context carries category, network_trusted, internal,
// encrypted, business_hours, hour, device_type, device_id, ip,
// session_minutes, risk_score (rounded) and risk_level.
const (
	cedarUserType     = cedar.EntityType("Classroom::User")
	cedarActionType   = cedar.EntityType("Classroom::Action")
	cedarResourceType = cedar.EntityType("Classroom::Resource")
)

func compileCedar(document string) (*cedar.PolicySet, error) {
	if document == "" {
		return nil, errors.New("cedar: empty document")
	}
	ps, err := cedar.NewPolicySetFromBytes("condition.cedar", []byte(document))
	if err != nil {
		return nil, fmt.Errorf("cedar: %w", err)
	}
	return ps, nil
}

func (c Condition) evaluateCedar(env Env) (bool, error) {
	ps := c.cedarSet
	if ps == nil {
		var err error
		if ps, err = compileCedar(c.Cedar); err != nil {
			return false, err
		}
	}

	entities, req := cedarRequest(env)
	decision, diag := cedar.Authorize(ps, entities, req)
	if decision != cedar.Allow && len(diag.Errors) > 0 {
		errs := make([]error, 0, len(diag.Errors))
		for _, e := range diag.Errors {
			errs = append(errs, fmt.Errorf("cedar policy %s: %s", e.PolicyID, e.Message))
		}
		return false, errors.Join(errs...)
	}
	return decision == cedar.Allow, nil
}

func cedarRequest(env Env) (cedar.EntityMap, cedar.Request) {
	ctx := env.Context
	user := ctx.User()
	op := ctx.Operation()
	res := ctx.Resource()
	netCtx := ctx.Network()
	device := ctx.Device()
	now := ctx.Now()

	userUID := cedar.NewEntityUID(cedarUserType, cedar.String(user.Username))
	actionUID := cedar.NewEntityUID(cedarActionType, cedar.String(op.Name))
	resourceUID := cedar.NewEntityUID(cedarResourceType, cedar.String(res.Key()))

	entities := cedar.EntityMap{
		userUID: cedar.Entity{
			UID:     userUID,
			Parents: cedar.NewEntityUIDSet(),
			Attributes: cedar.NewRecord(cedar.RecordMap{
				"role":      cedar.String(string(user.Role)),
				"role_rank": cedar.Long(user.Role.Rank()),
			}),
		},
		actionUID: cedar.Entity{
			UID:     actionUID,
			Parents: cedar.NewEntityUIDSet(),
			Attributes: cedar.NewRecord(cedar.RecordMap{
				"category": cedar.String(string(op.Category)),
			}),
		},
		resourceUID: cedar.Entity{
			UID:     resourceUID,
			Parents: cedar.NewEntityUIDSet(),
			Attributes: cedar.NewRecord(cedar.RecordMap{
				"type":     cedar.String(string(res.Type)),
				"name":     cedar.String(res.Name),
				"min_rank": cedar.Long(res.MinimumAccessRole.Rank()),
			}),
		},
	}

	level := ""
	if env.Assessment.Level != 0 {
		level = env.Assessment.Level.String()
	}

	return entities, cedar.Request{
		Principal: userUID,
		Action:    actionUID,
		Resource:  resourceUID,
		Context: cedar.NewRecord(cedar.RecordMap{
			"category":        cedar.String(string(op.Category)),
			"network_trusted": cedar.Boolean(env.Classifier.IsTrusted(netCtx.IP)),
			"internal":        cedar.Boolean(netCtx.Internal),
			"encrypted":       cedar.Boolean(netCtx.Encrypted),
			"business_hours":  cedar.Boolean(ctx.Time().IsBusinessHours()),
			"hour":            cedar.Long(now.Hour()),
			"device_type":     cedar.String(string(device.DeviceType)),
			"device_id":       cedar.String(device.DeviceID),
			"ip":              cedar.String(netCtx.IP),
			"session_minutes": cedar.Long(int64(ctx.Session().Duration(now).Minutes())),
			"risk_score":      cedar.Long(int64(math.Round(env.Assessment.Score))),
			"risk_level":      cedar.String(level),
		}),
	}
}
