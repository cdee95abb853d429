package acl

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/jsamuelsen/verse-recommender/internal/adapters/clients"
	"github.com/jsamuelsen/verse-recommender/internal/domain"
	"github.com/jsamuelsen/verse-recommender/internal/platform/logging"
)

const (
	// DefaultEdition is the recitation edition used when none is configured.
	DefaultEdition = "ar.alafasy"

	defaultQuranServiceName = "alquran-cloud"
	lookupOperation         = "lookup verse"
)

// QuranClientConfig contains configuration for the verse lookup adapter.
type QuranClientConfig struct {
	// Client is the HTTP client to use for requests.
	// Its BaseURL should point at the alquran.cloud API root, e.g. "http://api.alquran.cloud/v1".
	Client *clients.Client

	// Edition selects the text and recitation. Defaults to DefaultEdition.
	Edition string

	// ServiceName is used in domain errors. Defaults to the client's name.
	ServiceName string

	Logger *slog.Logger
}

// QuranClient implements ports.VerseLookup against the alquran.cloud ayah endpoint.
type QuranClient struct {
	BaseAdapter

	edition string
	logger  *slog.Logger
}

// NewQuranClient creates a new verse lookup adapter.
// Panics if Client is nil.
func NewQuranClient(cfg QuranClientConfig) *QuranClient {
	if cfg.Client == nil {
		panic("QuranClient: Client is required")
	}

	edition := cfg.Edition
	if edition == "" {
		edition = DefaultEdition
	}

	name := cfg.ServiceName
	if name == "" {
		name = cfg.Client.Name()
	}
	if name == "" {
		name = defaultQuranServiceName
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &QuranClient{
		BaseAdapter: NewBaseAdapter(cfg.Client, name),
		edition:     edition,
		logger:      logger,
	}
}

// ayahPayload is the data object of a successful ayah response.
// Only the fields the recommender displays are decoded.
type ayahPayload struct {
	Text          string `json:"text"`
	Audio         string `json:"audio"`
	NumberInSurah *int   `json:"numberInSurah"`
	Surah         struct {
		EnglishName string `json:"englishName"`
	} `json:"surah"`
}

// Edition returns the configured edition.
func (c *QuranClient) Edition() string {
	return c.edition
}

// LookupVerse fetches display metadata for ref.
// Implements ports.VerseLookup.
func (c *QuranClient) LookupVerse(ctx context.Context, ref domain.VerseRef) (*domain.VerseDisplay, error) {
	logger := logging.FromContextOr(ctx, c.logger)
	path := c.ayahPath(ref)
	id := ref.String()

	logger.Log(ctx, logging.LevelTrace, "starting request", slog.String("path", path))

	body, err := c.Get(ctx, path, lookupOperation, "verse", id)
	if err != nil {
		return nil, err
	}
	defer func() { _ = body.Close() }()

	env, err := DecodeResponse[Envelope](body)
	if err != nil {
		return nil, domain.NewUnavailableError(c.ServiceName(), err.Error())
	}

	if err := MapEnvelope(env, c.ServiceName(), lookupOperation, "verse", id); err != nil {
		logger.DebugContext(ctx, "upstream reported failure",
			slog.String("verse", id),
			slog.Int("code", env.Code),
			slog.String("status", env.Status))

		return nil, err
	}

	if !env.HasObject() {
		return nil, domain.NewUnavailableError(c.ServiceName(), "response has no data object")
	}

	var payload ayahPayload
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		return nil, domain.NewUnavailableError(c.ServiceName(), fmt.Sprintf("decoding ayah: %v", err))
	}

	display := translateAyah(ref, &payload)

	logger.Log(ctx, logging.LevelTrace, "translated external DTO to domain",
		slog.String("verse", id),
		slog.String("surah_name", display.SurahName))

	return display, nil
}

func (c *QuranClient) ayahPath(ref domain.VerseRef) string {
	return fmt.Sprintf("/ayah/%d:%d/%s", ref.Surah, ref.Verse, url.PathEscape(c.edition))
}

// translateAyah maps the upstream payload to display metadata.
// Missing strings stay empty and a missing verse number falls back to the requested one.
func translateAyah(ref domain.VerseRef, p *ayahPayload) *domain.VerseDisplay {
	number := ref.Verse
	if p.NumberInSurah != nil {
		number = *p.NumberInSurah
	}

	return &domain.VerseDisplay{
		SurahName:   p.Surah.EnglishName,
		VerseNumber: number,
		Text:        p.Text,
		Audio:       p.Audio,
	}
}

// Name returns the health check name for this adapter.
// Implements ports.HealthChecker.
func (c *QuranClient) Name() string {
	return c.ServiceName()
}

// Check reports unhealthy while the client's circuit breaker is open.
// It never calls the upstream.
// Implements ports.HealthChecker.
func (c *QuranClient) Check(ctx context.Context) error {
	return c.Client().Check(ctx)
}
