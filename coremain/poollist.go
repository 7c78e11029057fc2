package coremain

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pmkol/poollist/mlog"
	"github.com/pmkol/poollist/pkg/list"
	"github.com/pmkol/poollist/pkg/safe_close"
	"github.com/pmkol/poollist/pkg/script"
)

const sharedContextName = "shared"

type Poollist struct {
	logger *zap.Logger
	cfg    *Config

	exprs *script.ExprCache

	httpAPIMux *http.ServeMux
	metricsReg *prometheus.Registry
	metrics    *metrics

	sc *safe_close.SafeClose
}

func newPoollist(cfg *Config, lg *zap.Logger) *Poollist {
	p := &Poollist{
		logger:     lg,
		cfg:        cfg,
		exprs:      script.NewExprCache(cfg.ExprCacheSize),
		httpAPIMux: http.NewServeMux(),
		metricsReg: newMetricsReg(),
		sc:         safe_close.NewSafeClose(),
	}
	p.metrics = newMetrics(p.metricsReg)

	p.httpAPIMux.Handle("/metrics", promhttp.HandlerFor(p.metricsReg, promhttp.HandlerOpts{}))
	p.httpAPIMux.HandleFunc("/debug/pprof/", pprof.Index)
	p.httpAPIMux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	p.httpAPIMux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	p.httpAPIMux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	p.httpAPIMux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	return p
}

// RunPoollist runs the scripts of cfg. If an api address is configured or
// watch is enabled, it then keeps serving metrics and rerunning changed
// scripts until the process is interrupted.
func RunPoollist(cfg *Config) error {
	return runPoollist(cfg, safe_close.NewSafeClose())
}

// runPoollist is RunPoollist with a caller owned lifecycle, so a service
// manager can stop it through sc.
func runPoollist(cfg *Config, sc *safe_close.SafeClose) error {
	lg, err := mlog.NewLogger(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	p := newPoollist(cfg, lg)
	p.sc = sc

	if err := p.runScripts(); err != nil {
		if !cfg.Watch {
			return err
		}
		p.logger.Error("scripts failed, waiting for changes", zap.Error(err))
	}

	httpAddr := cfg.API.HTTP
	if len(httpAddr) == 0 && !cfg.Watch {
		return nil
	}

	if len(httpAddr) > 0 {
		httpServer := &http.Server{
			Addr:    httpAddr,
			Handler: p.httpAPIMux,
		}
		p.sc.Attach(func(closeSignal <-chan struct{}) error {
			errChan := make(chan error, 1)
			go func() {
				p.logger.Info("starting api http server", zap.String("addr", httpAddr))
				errChan <- httpServer.ListenAndServe()
			}()
			select {
			case err := <-errChan:
				return err
			case <-closeSignal:
				return httpServer.Close()
			}
		})
	}
	if cfg.Watch {
		p.sc.Attach(p.watchScripts)
	}
	p.sc.NotifySignal(os.Interrupt, syscall.SIGTERM)

	<-p.sc.ReceiveCloseSignal()
	p.logger.Info("shutting down")
	if err := p.sc.CloseWait(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (p *Poollist) loadScripts() ([]*script.Script, error) {
	if len(p.cfg.Scripts) == 0 {
		return nil, errors.New("no script is configured")
	}

	scripts := make([]*script.Script, 0, len(p.cfg.Scripts))
	for _, f := range p.cfg.Scripts {
		s, err := script.Load(f)
		if err != nil {
			return nil, fmt.Errorf("failed to load script: %w", err)
		}
		p.logger.Info("script loaded", zap.String("name", s.Name), zap.Int("steps", len(s.Steps)))
		scripts = append(scripts, s)
	}
	return scripts, nil
}

func (p *Poollist) runScripts() error {
	scripts, err := p.loadScripts()
	if err != nil {
		return err
	}

	if p.cfg.Isolate {
		return p.runIsolated(scripts)
	}
	return p.runShared(scripts)
}

func (p *Poollist) newContext(name string) *list.Context[string] {
	ctx := list.NewContext[string](p.cfg.Pool.heads(), p.cfg.Pool.nodes())
	p.metrics.observeStats(name, ctx.Stats())
	return ctx
}

func (p *Poollist) runShared(scripts []*script.Script) error {
	ctx := p.newContext(sharedContextName)
	r := script.NewRunner(ctx, p.exprs, p.logger.Named(sharedContextName))
	for _, s := range scripts {
		if err := p.runOne(sharedContextName, r, s); err != nil {
			return err
		}
	}
	return nil
}

func (p *Poollist) runIsolated(scripts []*script.Script) error {
	var g errgroup.Group
	for i, s := range scripts {
		name := fmt.Sprintf("%s#%d", s.Name, i)
		ctx := p.newContext(name)
		r := script.NewRunner(ctx, p.exprs, p.logger.Named(name))
		g.Go(func() error {
			return p.runOne(name, r, s)
		})
	}
	return g.Wait()
}

func (p *Poollist) runOne(context string, r *script.Runner, s *script.Script) error {
	res, err := r.Run(s)
	p.metrics.observeRun(context, res, err)
	if err != nil {
		p.logger.Error("script failed", zap.String("context", context), zap.Error(err))
		return fmt.Errorf("script %s failed: %w", s.Name, err)
	}

	p.logger.Info("script done",
		zap.String("context", context),
		zap.String("script", res.Name),
		zap.Int("steps", res.Steps),
		zap.Int("lists", res.Stats.Lists),
		zap.Int("nodes", res.Stats.Nodes),
	)
	return nil
}
