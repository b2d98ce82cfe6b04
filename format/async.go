/*
 * async.go, part of molview.
 *
 * Copyright 2012 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package format

import (
	"context"
	"runtime"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	chem "github.com/rmera/molview"
	"github.com/rmera/molview/internal/logging"
)

// Result is the outcome of an asynchronous load.
type Result struct {
	JobID      uuid.UUID
	Path       string
	Trajectory *chem.Trajectory
	Err        error
}

// Job is a load running in the background.
type Job struct {
	ID     uuid.UUID
	Path   string
	result chan Result
}

// Result returns the channel that delivers the outcome of the job. It carries
// exactly one value and is then closed.
func (J *Job) Result() <-chan Result { return J.result }

// Wait blocks until the job is done or ctx is done.
func (J *Job) Wait(ctx context.Context) (*chem.Trajectory, error) {
	select {
	case r := <-J.result:
		return r.Trajectory, r.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// LoadAsync starts loading path on its own goroutine. If ctx is cancelled
// before the file is read, the trajectory is discarded and the result carries
// ctx.Err().
func LoadAsync(ctx context.Context, path string) *Job {
	J := &Job{ID: uuid.New(), Path: path, result: make(chan Result, 1)}
	log := logging.Component("format").WithFields(logging.Fields{"job": J.ID.String(), "source": path})
	go func() {
		defer close(J.result)
		traj, err := Load(path)
		if ctx.Err() != nil {
			log.Debug("load cancelled, result discarded")
			J.result <- Result{JobID: J.ID, Path: path, Err: ctx.Err()}
			return
		}
		J.result <- Result{JobID: J.ID, Path: path, Trajectory: traj, Err: err}
	}()
	return J
}

// LoadAll loads every path concurrently. The trajectories are returned in the
// order of paths. The first error cancels the loads that have not started.
func LoadAll(ctx context.Context, paths ...string) ([]*chem.Trajectory, error) {
	trajs := make([]*chem.Trajectory, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			traj, err := Load(p)
			if err != nil {
				return err
			}
			trajs[i] = traj
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return trajs, nil
}
