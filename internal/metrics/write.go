package metrics

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// ErrGather is returned by Write when nothing could be gathered. Nothing has
// been written to the response in that case.
var ErrGather = errors.New("gather metrics")

// Write renders everything g gathers onto w. The format is negotiated from the
// request Accept header; clients that send none get the text exposition format.
// A partial gather is still written.
func Write(w http.ResponseWriter, r *http.Request, g prometheus.Gatherer) error {
	mfs, err := g.Gather()
	if err != nil && len(mfs) == 0 {
		return fmt.Errorf("%w: %v", ErrGather, err)
	}

	format := expfmt.Negotiate(r.Header)
	w.Header().Set("Content-Type", string(format))

	enc := expfmt.NewEncoder(w, format)
	for _, mf := range mfs {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("encode %s: %w", mf.GetName(), err)
		}
	}
	if closer, ok := enc.(expfmt.Closer); ok {
		return closer.Close()
	}
	return nil
}
