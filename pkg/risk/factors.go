package risk

import (
	"time"

	"github.com/laughtale01/Scratch-sub001/pkg/access"
	"github.com/laughtale01/Scratch-sub001/pkg/profile"
)

// Factor penalties.
const (
	unusualActivityPenalty = 30
	failedAttemptsPenalty  = 40
	newAccountPenalty      = 15
	failedAttemptsLimit    = 3

	untrustedNetworkPenalty = 25
	vpnPenalty              = 20
	highRiskCountryPenalty  = 30
	unencryptedPenalty      = 40

	sensitiveResourcePenalty = 25
	bulkOperationPenalty     = 20

	offHoursPenalty   = 20
	deepNightPenalty  = 40
	workdayStartHour  = 8
	workdayEndHour    = 18
	nightStartHour    = 22
	nightEndHour      = 6
	longSessionAfter  = 8 * time.Hour
	longSessionCost   = 30
	freshSessionUnder = 5 * time.Minute
	freshSessionCost  = 15

	unknownDevicePenalty   = 25
	untrustedDevicePenalty = 20
)

// Role offsets. Higher privilege carries more inherent risk.
var roleRisk = map[access.Role]int{
	access.RoleStudent: 10,
	access.RoleTeacher: 5,
	access.RoleAdmin:   20,
}

// Category base scores. COMMUNICATION carries no base risk.
var categoryRisk = map[access.Category]int{
	access.CategoryBasic:          5,
	access.CategoryCollaboration:  10,
	access.CategoryBuilding:       15,
	access.CategoryAdministrative: 40,
	access.CategorySecurity:       50,
}

// behaviorSignals is what the user factor reads from a profile. It is
// captured before the current request is recorded.
type behaviorSignals struct {
	unusual        bool
	failedAttempts int
	newAccount     bool
}

func signalsFrom(p *profile.BehaviorProfile) behaviorSignals {
	return behaviorSignals{
		unusual:        p.HasUnusualActivity(),
		failedAttempts: p.FailedAttempts(),
		newAccount:     p.IsNewAccount(),
	}
}

func userRisk(role access.Role, s behaviorSignals) int {
	score := roleRisk[role]
	if s.unusual {
		score += unusualActivityPenalty
	}
	if s.failedAttempts > failedAttemptsLimit {
		score += failedAttemptsPenalty
	}
	if s.newAccount {
		score += newAccountPenalty
	}
	return clamp(score)
}

func networkRisk(threat profile.ThreatProfile, trusted, encrypted bool) int {
	score := threat.BaseScore
	if !trusted {
		score += untrustedNetworkPenalty
	}
	if threat.VPNOrProxy {
		score += vpnPenalty
	}
	if threat.HighRiskCountry {
		score += highRiskCountryPenalty
	}
	if !encrypted {
		score += unencryptedPenalty
	}
	return clamp(score)
}

func operationRisk(op access.Operation, res access.Resource) int {
	score := categoryRisk[op.Category]
	if res.Type.IsSensitive() {
		score += sensitiveResourcePenalty
	}
	if op.IsBulk() {
		score += bulkOperationPenalty
	}
	return clamp(score)
}

// timeRisk penalises off-hours access. Deep night falls outside both bands
// and pays both penalties.
func timeRisk(at time.Time) int {
	h := at.Hour()
	score := 0
	if h < workdayStartHour || h >= workdayEndHour {
		score += offHoursPenalty
	}
	if h < nightEndHour || h >= nightStartHour {
		score += deepNightPenalty
	}
	return clamp(score)
}

func sessionRisk(age time.Duration) int {
	score := 0
	if age > longSessionAfter {
		score += longSessionCost
	}
	if age < freshSessionUnder {
		score += freshSessionCost
	}
	return clamp(score)
}

func deviceRisk(d access.DeviceContext, trusted bool) int {
	score := 0
	if !d.DeviceType.Known() {
		score += unknownDevicePenalty
	}
	if !trusted {
		score += untrustedDevicePenalty
	}
	return clamp(score)
}
