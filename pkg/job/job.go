// Package job runs named background tasks and records their lifecycle on the
// logger's task level.
package job

import (
	"context"
	"errors"

	"github.com/HorseArcher567/corelog/pkg/xlog"
)

type Func func(ctx context.Context, log *xlog.Logger) error

type Job struct {
	// Job name
	Name string `yaml:"name" json:"name" toml:"name"`
	// Job function
	Func Func `yaml:"-" json:"-" toml:"-"`
}

func (j *Job) Validate() error {
	if j.Name == "" {
		return errors.New("job name is required")
	}

	if j.Func == nil {
		return errors.New("job function is required")
	}

	return nil
}

func (j *Job) Run(ctx context.Context, log *xlog.Logger) error {
	log.Task("running job", xlog.Fields{"name": j.Name})
	if err := j.Func(ctx, log); err != nil {
		return err
	}
	log.Task("job finished", xlog.Fields{"name": j.Name})
	return nil
}
