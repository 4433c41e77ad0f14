package service

import "github.com/leifengsang/XivInTheShellMarkerGen/pkg/logger"

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSource sets where the fight and its event streams are fetched from.
func WithSource(source Source) Option {
	return func(s *Service) {
		if source != nil {
			s.source = source
		}
	}
}

// WithReport selects the report and the fight inside it.
func WithReport(reportID string, fightID int) Option {
	return func(s *Service) {
		s.reportID = reportID
		s.fightID = fightID
	}
}

// WithCastNames sets the allow-list for the casts stream.
func WithCastNames(names []string) Option {
	return func(s *Service) {
		s.castNames = names
	}
}

// WithDamageNames sets the allow-list for the damage-taken stream.
func WithDamageNames(names []string) Option {
	return func(s *Service) {
		s.damageNames = names
	}
}

// WithTranslations sets the ability name to label table.
func WithTranslations(translations map[string]string) Option {
	return func(s *Service) {
		s.translations = translations
	}
}

// WithMinGap sets the track spacing in milliseconds.
func WithMinGap(ms int64) Option {
	return func(s *Service) {
		if ms >= 0 {
			s.minGap = ms
		}
	}
}

// WithWindows sets the cast, echo and splash dedup windows in milliseconds.
// Zero keeps the respective default.
func WithWindows(castIgnore, echo, splash int64) Option {
	return func(s *Service) {
		s.castIgnoreWindow = castIgnore
		s.echoWindow = echo
		s.splashWindow = splash
	}
}

// WithUntargetableLabels sets the labels of the untargetable track markers.
func WithUntargetableLabels(notTargetable, targetable string) Option {
	return func(s *Service) {
		s.notTargetableLabel = notTargetable
		s.targetableLabel = targetable
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
