package responder

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

type rejectingExecutor struct{ err error }

func (e rejectingExecutor) Submit(context.Context, func(context.Context)) error { return e.err }

// goExecutor runs each task on its own goroutine.
type goExecutor struct{ wg sync.WaitGroup }

func (e *goExecutor) Submit(ctx context.Context, task func(context.Context)) error {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		task(ctx)
	}()
	return nil
}

func TestFuture(t *testing.T) {
	Convey("Given futures", t, func() {
		ctx := context.Background()

		Convey("When completed up front", func() {
			f := Completed("ok")
			v, err := f.Await(ctx)

			So(f.IsDone(), ShouldBeTrue)
			So(v, ShouldEqual, "ok")
			So(err, ShouldBeNil)
		})

		Convey("When failed up front", func() {
			boom := errors.New("boom")
			_, err := Failed[string](boom).Await(ctx)
			So(err, ShouldEqual, boom)
		})

		Convey("When completed twice", func() {
			f := newFuture[int]()
			f.complete(1, nil)
			f.complete(2, errors.New("late"))
			v, err := f.Await(ctx)

			Convey("Then the first result wins", func() {
				So(v, ShouldEqual, 1)
				So(err, ShouldBeNil)
			})
		})

		Convey("When awaiting a pending future past its deadline", func() {
			f := newFuture[string]()
			tctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
			defer cancel()
			_, err := f.Await(tctx)

			So(f.IsDone(), ShouldBeFalse)
			So(errors.Is(err, context.DeadlineExceeded), ShouldBeTrue)
		})
	})
}

func TestAsync(t *testing.T) {
	Convey("Given Async", t, func() {
		ctx := context.Background()

		Convey("When the executor runs the task", func() {
			exec := &goExecutor{}
			release := make(chan struct{})
			f := Async(ctx, exec, func(context.Context) (string, error) {
				<-release
				return "done", nil
			})

			Convey("Then the future resolves after the task finishes", func() {
				So(f.IsDone(), ShouldBeFalse)
				close(release)
				v, err := f.Await(ctx)
				So(err, ShouldBeNil)
				So(v, ShouldEqual, "done")
				exec.wg.Wait()
			})
		})

		Convey("When the executor rejects the task", func() {
			full := errors.New("queue full")
			_, err := Async(ctx, rejectingExecutor{err: full}, func(context.Context) (int, error) {
				return 1, nil
			}).Await(ctx)

			So(errors.Is(err, ErrRejected), ShouldBeTrue)
			So(errors.Is(err, full), ShouldBeTrue)
		})

		Convey("When the task panics", func() {
			_, err := Async(ctx, DirectExecutor{}, func(context.Context) (int, error) {
				panic("kaput")
			}).Await(ctx)

			So(errors.Is(err, ErrTaskPanicked), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "kaput")
		})

		Convey("When the request context ends before the task starts", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			called := false
			_, err := Async(cctx, DirectExecutor{}, func(context.Context) (int, error) {
				called = true
				return 1, nil
			}).Await(ctx)

			So(called, ShouldBeFalse)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})

		Convey("When many goroutines await the same future", func() {
			f := newFuture[string]()
			var wg sync.WaitGroup
			got := make([]string, 16)
			for i := range got {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					got[i], _ = f.Await(ctx)
				}(i)
			}
			f.complete("shared", nil)
			wg.Wait()

			for _, v := range got {
				So(v, ShouldEqual, "shared")
			}
		})
	})
}
