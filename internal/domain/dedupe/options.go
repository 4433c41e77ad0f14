package dedupe

// Default dedup windows in milliseconds.
const (
	DefaultCastIgnoreWindow = 100
	DefaultEchoWindow       = 1000
	DefaultSplashWindow     = 1000
)

// Option applies a configuration option to the deduplicators.
type Option func(*settings)

type settings struct {
	names            map[string]struct{}
	translations     map[string]string
	castIgnoreWindow int64
	echoWindow       int64
	splashWindow     int64
}

func newSettings(opts []Option) settings {
	s := settings{
		names:            map[string]struct{}{},
		translations:     map[string]string{},
		castIgnoreWindow: DefaultCastIgnoreWindow,
		echoWindow:       DefaultEchoWindow,
		splashWindow:     DefaultSplashWindow,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithNames sets the allow-list of ability names. Events for other
// abilities are dropped before deduplication. An empty list drops everything.
func WithNames(names []string) Option {
	return func(s *settings) {
		s.names = make(map[string]struct{}, len(names))
		for _, name := range names {
			s.names[name] = struct{}{}
		}
	}
}

// WithTranslations sets the ability name to marker label table.
// Names missing from the table are used verbatim.
func WithTranslations(translations map[string]string) Option {
	return func(s *settings) {
		// Copy the table to avoid external modifications
		s.translations = make(map[string]string, len(translations))
		for name, label := range translations {
			s.translations[name] = label
		}
	}
}

// WithCastIgnoreWindow sets the window within which an identical cast
// is treated as the same cast landing on several targets.
func WithCastIgnoreWindow(ms int64) Option {
	return func(s *settings) {
		if ms > 0 {
			s.castIgnoreWindow = ms
		}
	}
}

// WithEchoWindow sets the window after a finished cast bar within which a
// zero-duration cast of the same label is discarded.
func WithEchoWindow(ms int64) Option {
	return func(s *settings) {
		if ms > 0 {
			s.echoWindow = ms
		}
	}
}

// WithSplashWindow sets the window within which a damage tick on a different
// target than the previous tick of the same label is discarded.
func WithSplashWindow(ms int64) Option {
	return func(s *settings) {
		if ms > 0 {
			s.splashWindow = ms
		}
	}
}

func (s settings) allowed(name string) bool {
	_, ok := s.names[name]
	return ok
}

func (s settings) label(name string) string {
	if label, ok := s.translations[name]; ok {
		return label
	}
	return name
}
