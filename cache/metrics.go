package cache

// NoopMetrics is a drop-in Metrics implementation that does nothing.
// It is the default when no observability backend is configured.
type NoopMetrics struct{}

func (NoopMetrics) Hit()                     {}
func (NoopMetrics) Miss()                    {}
func (NoopMetrics) Evict(EvictReason)        {}
func (NoopMetrics) Veto(VetoOp)              {}
func (NoopMetrics) Size(tracked, linked int) {}

var _ Metrics = NoopMetrics{}
