package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hupe1980/pathgo/progress"
	"github.com/pierrec/lz4/v4"
)

// Replay record type tags.
const (
	replayVisited  = "visited_batch"
	replayFrontier = "frontier"
	replayBestPath = "best_path"
	replayProgress = "progress"
	replayComplete = "complete"
	replaySaveReq  = "save_request"
)

// replayRecord is the envelope for one event in the replay log.
type replayRecord struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// ReplayWriter appends progress events to an lz4-framed log of JSON lines.
// Close flushes the frame; a log without it is unreadable.
type ReplayWriter struct {
	lz  *lz4.Writer
	enc *json.Encoder
}

// NewReplayWriter wraps w. The caller keeps ownership of w and closes it
// after the replay writer.
func NewReplayWriter(w io.Writer) *ReplayWriter {
	lz := lz4.NewWriter(w)

	return &ReplayWriter{
		lz:  lz,
		enc: json.NewEncoder(lz),
	}
}

// Append writes one event to the log.
func (w *ReplayWriter) Append(e progress.Event) error {
	var rec replayRecord

	switch e.(type) {
	case progress.VisitedBatch:
		rec.Type = replayVisited
	case progress.FrontierSnapshot:
		rec.Type = replayFrontier
	case progress.BestPathSoFar:
		rec.Type = replayBestPath
	case progress.Progress:
		rec.Type = replayProgress
	case progress.Complete:
		rec.Type = replayComplete
	case progress.SaveRequest:
		rec.Type = replaySaveReq
	default:
		return fmt.Errorf("export: unknown event type %T", e)
	}

	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	rec.Data = data

	return w.enc.Encode(rec)
}

// Close flushes the lz4 frame. It does not close the underlying writer.
func (w *ReplayWriter) Close() error {
	return w.lz.Close()
}

// ReplayReader iterates the events of a replay log.
type ReplayReader struct {
	dec *json.Decoder
}

// NewReplayReader wraps r.
func NewReplayReader(r io.Reader) *ReplayReader {
	return &ReplayReader{
		dec: json.NewDecoder(lz4.NewReader(r)),
	}
}

// Next returns the next event, io.EOF at the end of the log.
func (r *ReplayReader) Next() (progress.Event, error) {
	var rec replayRecord
	if err := r.dec.Decode(&rec); err != nil {
		return nil, err
	}

	switch rec.Type {
	case replayVisited:
		var e progress.VisitedBatch
		if err := json.Unmarshal(rec.Data, &e); err != nil {
			return nil, err
		}

		return e, nil
	case replayFrontier:
		var e progress.FrontierSnapshot
		if err := json.Unmarshal(rec.Data, &e); err != nil {
			return nil, err
		}

		return e, nil
	case replayBestPath:
		var e progress.BestPathSoFar
		if err := json.Unmarshal(rec.Data, &e); err != nil {
			return nil, err
		}

		return e, nil
	case replayProgress:
		var e progress.Progress
		if err := json.Unmarshal(rec.Data, &e); err != nil {
			return nil, err
		}

		return e, nil
	case replayComplete:
		var e progress.Complete
		if err := json.Unmarshal(rec.Data, &e); err != nil {
			return nil, err
		}

		return e, nil
	case replaySaveReq:
		var e progress.SaveRequest
		if err := json.Unmarshal(rec.Data, &e); err != nil {
			return nil, err
		}

		return e, nil
	default:
		return nil, fmt.Errorf("export: unknown replay record type %q", rec.Type)
	}
}
