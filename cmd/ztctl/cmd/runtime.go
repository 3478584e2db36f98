package cmd

import (
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/laughtale01/Scratch-sub001/internal/config"
	"github.com/laughtale01/Scratch-sub001/internal/metrics"
	"github.com/laughtale01/Scratch-sub001/internal/version"
	"github.com/laughtale01/Scratch-sub001/pkg/audit"
	"github.com/laughtale01/Scratch-sub001/pkg/authz"
	"github.com/laughtale01/Scratch-sub001/pkg/clierror"
	"github.com/laughtale01/Scratch-sub001/pkg/policy"
	"github.com/laughtale01/Scratch-sub001/pkg/risk"
)

// runtime is the fully wired decision pipeline for one command invocation.
type runtime struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *metrics.Collector
	risk     *risk.Engine
	policies *policy.Engine
	authz    *authz.Authorizer
	syslog   *audit.SyslogWriter
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		path := o.configPath
		if path == "" {
			path = os.Getenv(config.EnvVar)
		}
		return nil, fileError(path, err, clierror.ConfigInvalid)
	}
	return cfg, nil
}

// effectivePolicies returns the default set (when enabled) overlaid by the
// configured policy file. File policies replace defaults of the same name.
func effectivePolicies(cfg *config.Config) ([]policy.Policy, error) {
	var out []policy.Policy
	if cfg.Policies.IncludeDefaults {
		out = append(out, policy.DefaultPolicies()...)
	}
	if cfg.Policies.File != "" {
		ps, err := policy.LoadFile(cfg.Policies.File)
		if err != nil {
			return nil, fileError(cfg.Policies.File, err, clierror.PolicyInvalid)
		}
		out = append(out, ps...)
	}
	return out, nil
}

// newRuntime wires every component from config. now pins the evaluation
// instant; nil means the wall clock.
func (o *rootOptions) newRuntime(cmd *cobra.Command, now func() time.Time) (*runtime, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	if now == nil {
		now = time.Now
	}
	logger := cfg.NewLogger(cmd.ErrOrStderr())

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)
	collector.SetBuildInfo(version.String())

	classifier, err := cfg.Classifier()
	if err != nil {
		return nil, clierror.ConfigInvalid(o.configPath, err)
	}
	riskOpts := []risk.Option{
		risk.WithWeights(cfg.Risk.Weights),
		risk.WithClassifier(classifier),
		risk.WithTrustedDevices(cfg.Risk.TrustedDevices...),
		risk.WithClock(now),
		risk.WithLogger(logger),
	}
	if loc, err := cfg.Location(); err == nil && loc != nil {
		riskOpts = append(riskOpts, risk.WithLocation(loc))
	}
	riskEngine, err := risk.NewEngine(riskOpts...)
	if err != nil {
		return nil, clierror.ConfigInvalid(o.configPath, err)
	}

	policyEngine := policy.NewEngine(
		policy.WithLogger(logger),
		policy.WithMetrics(collector),
		policy.WithClassifier(classifier),
	)
	policies, err := effectivePolicies(cfg)
	if err != nil {
		return nil, err
	}
	if err := policyEngine.AddPolicies(policies...); err != nil {
		return nil, clierror.PolicyInvalid(cfg.Policies.File, err)
	}

	rt := &runtime{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		metrics:  collector,
		risk:     riskEngine,
		policies: policyEngine,
	}

	slogSink := audit.NewSlogLogger(logger)
	sinks := audit.Multi{slogSink}
	emitters := []audit.EventEmitter{slogSink}
	if cfg.Audit.Syslog.Enabled {
		w, err := audit.NewSyslogWriter(cfg.SyslogWriterConfig())
		if err != nil {
			logger.Warn("syslog audit sink unavailable", "socket", cfg.Audit.Syslog.SocketPath, "error", err)
		} else {
			rt.syslog = w
			sinks = append(sinks, w)
			emitters = append(emitters, w)
		}
	}

	rt.authz = authz.NewAuthorizer(
		authz.WithRiskEngine(riskEngine),
		authz.WithPolicyEngine(policyEngine),
		authz.WithAuditLogger(sinks),
		authz.WithEventEmitter(audit.NewFanout(logger, emitters...)),
		authz.WithLogger(logger),
		authz.WithMetrics(collector),
		authz.WithClock(now),
		authz.WithMaxSessionAge(cfg.Verification.MaxSessionAge),
	)
	resourcePolicies, err := cfg.ResourcePolicies()
	if err != nil {
		return nil, clierror.ConfigInvalid(o.configPath, err)
	}
	for _, rp := range resourcePolicies {
		rt.authz.SetResourcePolicy(rp)
	}
	return rt, nil
}

// close releases the syslog socket and writes the metrics file if requested.
func (rt *runtime) close(metricsFile string) {
	if err := rt.syslog.Close(); err != nil {
		rt.logger.Warn("closing syslog sink", "error", err)
	}
	if metricsFile == "" {
		return
	}
	if err := prometheus.WriteToTextfile(metricsFile, rt.registry); err != nil {
		rt.logger.Error("writing metrics file", "path", metricsFile, "error", err)
	}
}
