package profile

import "github.com/laughtale01/Scratch-sub001/pkg/netutil"

// Base threat scores assigned by HeuristicThreatSource.
const (
	LocalThreatScore    = 5
	ExternalThreatScore = 15
)

// ThreatProfile is the threat rating of one network origin.
type ThreatProfile struct {
	IP              string `json:"ip" yaml:"ip"`
	BaseScore       int    `json:"base_score" yaml:"base_score"`
	VPNOrProxy      bool   `json:"vpn_or_proxy" yaml:"vpn_or_proxy"`
	HighRiskCountry bool   `json:"high_risk_country" yaml:"high_risk_country"`
}

// ThreatSource rates an address. Implementations may consult geo-IP or
// reputation data; they must be safe for concurrent use.
type ThreatSource interface {
	Lookup(ip string) ThreatProfile
}

// ThreatSourceFunc adapts a function to ThreatSource.
type ThreatSourceFunc func(ip string) ThreatProfile

// Lookup calls f(ip).
func (f ThreatSourceFunc) Lookup(ip string) ThreatProfile { return f(ip) }

// HeuristicThreatSource scores loopback and private addresses low and
// everything else medium. It never flags VPN or country risk.
type HeuristicThreatSource struct{}

// Lookup implements ThreatSource.
func (HeuristicThreatSource) Lookup(ip string) ThreatProfile {
	score := ExternalThreatScore
	if netutil.IsLocalAddr(ip) {
		score = LocalThreatScore
	}
	return ThreatProfile{IP: ip, BaseScore: score}
}
