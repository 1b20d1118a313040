// Package progress carries search progress from the engine worker to its
// consumer: a tagged event union, a bounded single-producer single-consumer
// stream, and a reducer that folds the event sequence into renderable state.
//
// Ownership of event payloads transfers on send. The producer clones
// whatever it keeps mutating before handing it off, so no mutable memory is
// ever shared across the goroutine boundary.
//
// # Usage
//
//	stream := progress.NewStream(0)
//	reducer := progress.NewReducer(100 * time.Millisecond)
//
//	for {
//		ev, err := stream.Poll(50 * time.Millisecond)
//		if errors.Is(err, progress.ErrPollTimeout) {
//			continue
//		}
//		if errors.Is(err, progress.ErrStreamClosed) {
//			break
//		}
//
//		if err := reducer.Apply(ev); err != nil {
//			return err
//		}
//
//		if reducer.ShouldRender() {
//			render(reducer.State())
//		}
//	}
package progress
