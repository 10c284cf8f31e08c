package gateway

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pbaille/orgadmin/internal/domain"
	"github.com/pbaille/orgadmin/internal/store"
)

// Loader reads the documents from a data directory or a base URL
type Loader struct {
	source string
	client *http.Client
	log    zerolog.Logger
}

// NewLoader creates a Loader. source is a directory path or an http(s) base URL.
func NewLoader(source string, timeout time.Duration, log zerolog.Logger) *Loader {
	return &Loader{
		source: source,
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

// Source returns where documents are read from.
func (l *Loader) Source() string { return l.source }

// Load returns the raw bytes of one document
func (l *Loader) Load(ctx context.Context, kind domain.DocumentKind) ([]byte, error) {
	if IsURL(l.source) {
		return fetchURL(ctx, l.client, l.source, kind.FileName())
	}
	return readFile(l.source, kind.FileName())
}

// LoadAll loads the three documents concurrently and installs them in s.
// A document that cannot be read or parsed is logged and replaced by its
// empty default; the others are unaffected.
func (l *Loader) LoadAll(ctx context.Context, s *store.Store) {
	type result struct {
		data []byte
		err  error
	}
	results := make([]result, len(domain.Documents))

	var wg sync.WaitGroup
	for i, kind := range domain.Documents {
		i, kind := i, kind
		wg.Add(1)
		go func() {
			defer wg.Done()
			data, err := l.Load(ctx, kind)
			results[i] = result{data: data, err: err}
		}()
	}
	wg.Wait()

	for i, kind := range domain.Documents {
		logger := l.log.With().Str("document", kind.FileName()).Str("source", l.source).Logger()
		if results[i].err != nil {
			logger.Warn().Err(results[i].err).Msg("document not loaded, using empty default")
			installDefault(s, kind)
			continue
		}
		install, err := decode(kind, results[i].data)
		if err != nil {
			logger.Warn().Err(err).Msg("document not parsed, using empty default")
			installDefault(s, kind)
			continue
		}
		install(s)
		if dropped, err := droppedFields(s, kind, results[i].data); err == nil && len(dropped) > 0 {
			logger.Warn().Strs("dropped", dropped).Msg("unknown fields will not be exported")
		}
		logger.Debug().Int("bytes", len(results[i].data)).Msg("document loaded")
	}
}
