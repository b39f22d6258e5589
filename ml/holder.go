package ml

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Holder owns the pipeline served by the process. Handlers read the current
// pipeline without locking; Reload swaps it only when the new artifact loads
// cleanly.
type Holder struct {
	path    string
	current atomic.Pointer[Pipeline]
	cache   *PredictionCache
	logger  *zap.Logger

	reloadMu  sync.Mutex
	listeners []ReloadListener
}

// Prediction is a salary together with the artifact version that scored it.
type Prediction struct {
	Salary       float64 `json:"predicted_salary"`
	ModelVersion string  `json:"model_version"`
}

// ReloadListener is called after every Reload attempt. info describes the
// pipeline being served afterwards.
type ReloadListener func(info ArtifactInfo, err error)

// NewHolder loads the artifact at path. A load failure is logged and leaves
// the holder serving a disabled pipeline. cache may be nil.
func NewHolder(path string, cache *PredictionCache, logger *zap.Logger) *Holder {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Holder{path: path, cache: cache, logger: logger}
	p, err := LoadPipeline(path)
	if err != nil {
		logger.Warn("model artifact unavailable, predictions disabled",
			zap.String("path", path),
			zap.Error(err),
		)
	} else {
		logger.Info("model artifact loaded",
			zap.String("path", path),
			zap.String("version", p.Version()),
		)
	}
	h.current.Store(p)
	return h
}

// Pipeline returns the pipeline currently being served.
func (h *Holder) Pipeline() *Pipeline {
	return h.current.Load()
}

func (h *Holder) Path() string {
	return h.path
}

// Predict scores rec with the current pipeline. Only successful predictions
// are cached.
func (h *Holder) Predict(rec Record) (Prediction, error) {
	p := h.current.Load()
	if h.cache != nil && p.Ready() {
		if salary, ok := h.cache.Get(p.Version(), rec); ok {
			return Prediction{Salary: salary, ModelVersion: p.Version()}, nil
		}
	}
	salary, err := p.Predict(rec)
	if err != nil {
		return Prediction{}, err
	}
	if h.cache != nil {
		h.cache.Add(p.Version(), rec, salary)
	}
	return Prediction{Salary: salary, ModelVersion: p.Version()}, nil
}

func (h *Holder) Ready() bool {
	return h.current.Load().Ready()
}

// OnReload registers fn to be called after each Reload.
func (h *Holder) OnReload(fn ReloadListener) {
	h.reloadMu.Lock()
	defer h.reloadMu.Unlock()
	h.listeners = append(h.listeners, fn)
}

func (h *Holder) Info() (ArtifactInfo, bool) {
	return h.current.Load().Info()
}

// Reload re-reads the artifact. If loading fails the previous pipeline stays
// in place and the error is returned.
func (h *Holder) Reload() error {
	h.reloadMu.Lock()
	defer h.reloadMu.Unlock()

	p, err := LoadPipeline(h.path)
	if err != nil {
		h.logger.Error("model reload failed, keeping current artifact",
			zap.String("path", h.path),
			zap.String("current_version", h.current.Load().Version()),
			zap.Error(err),
		)
		h.notify(err)
		return err
	}

	old := h.current.Swap(p)
	if h.cache != nil && old.Version() != p.Version() {
		h.cache.Purge()
	}
	h.logger.Info("model artifact reloaded",
		zap.String("path", h.path),
		zap.String("previous_version", old.Version()),
		zap.String("version", p.Version()),
	)
	h.notify(nil)
	return nil
}

func (h *Holder) notify(err error) {
	info, _ := h.current.Load().Info()
	for _, fn := range h.listeners {
		fn(info, err)
	}
}
