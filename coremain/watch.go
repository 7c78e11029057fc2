package coremain

import (
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const rerunDelay = time.Second

// watchScripts reruns all scripts on fresh contexts after a script file
// changed. Events are coalesced so that an editor writing a file in
// several steps triggers one run. Failed runs are logged only.
func (p *Poollist) watchScripts(closeSignal <-chan struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create script watcher: %w", err)
	}
	defer watcher.Close()

	addAll := func() {
		for _, f := range p.cfg.Scripts {
			if err := watcher.Add(f); err != nil {
				p.logger.Warn("failed to watch script", zap.String("file", f), zap.Error(err))
			}
		}
	}
	addAll()

	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()
	resetTimer := func() {
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(rerunDelay)
	}

	needReWatch := false
	for {
		select {
		case e, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if e.Has(fsnotify.Chmod) {
				continue
			}
			p.logger.Debug("script event", zap.String("file", e.Name), zap.Stringer("op", e.Op))
			if e.Has(fsnotify.Remove) || e.Has(fsnotify.Rename) {
				needReWatch = true
			}
			resetTimer()

		case <-timer.C:
			if needReWatch {
				needReWatch = false
				for _, f := range p.cfg.Scripts {
					_ = watcher.Remove(f)
				}
				addAll()
			}
			p.logger.Info("script changed, rerunning")
			if err := p.runScripts(); err != nil {
				p.logger.Error("rerun failed", zap.Error(err))
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			p.logger.Error("script watcher error", zap.Error(err))

		case <-closeSignal:
			return nil
		}
	}
}
