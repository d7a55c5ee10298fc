package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	"github.com/trezcool/mwalimu/core"
	"github.com/trezcool/mwalimu/core/offline"
)

// scheduler runs the syncer on a cron schedule. A run is skipped while the previous one is still going.
type scheduler struct {
	cron   *cron.Cron
	syncer *offline.Syncer
	logger core.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

func newScheduler(spec string, syncer *offline.Syncer, logger core.Logger) (*scheduler, error) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &scheduler{
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		syncer: syncer,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
	if _, err := s.cron.AddFunc(spec, s.sync); err != nil {
		cancel()
		return nil, errors.Wrapf(err, "invalid sync schedule %q", spec)
	}
	return s, nil
}

func (s *scheduler) sync() {
	res, err := s.syncer.Run(s.ctx)
	if err != nil {
		if s.ctx.Err() == nil {
			s.logger.Error(fmt.Sprintf("sync run failed: %v", err), err)
		}
		return
	}
	if res.Delivered+res.Rejected+res.Kept > 0 {
		s.logger.Info(fmt.Sprintf("sync run: delivered %d, rejected %d, kept %d", res.Delivered, res.Rejected, res.Kept))
	}
}

func (s *scheduler) start() {
	s.cron.Start()
}

// stop cancels the running sync, if any, and waits for it to return.
func (s *scheduler) stop() {
	s.cancel()
	<-s.cron.Stop().Done()
}
