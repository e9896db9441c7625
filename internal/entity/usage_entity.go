package entity

import (
	"time"

	"github.com/google/uuid"
)

type FeatureKey string

const (
	FeatureCVGenerations FeatureKey = "cv_generations"
	FeatureCoverLetters  FeatureKey = "cover_letters"
	FeatureATSScores     FeatureKey = "ats_scores"
)

// MeteredFeatures lists every feature the paywall knows about, in display order.
var MeteredFeatures = []FeatureKey{
	FeatureCVGenerations,
	FeatureCoverLetters,
	FeatureATSScores,
}

func (f FeatureKey) Known() bool {
	for _, k := range MeteredFeatures {
		if k == f {
			return true
		}
	}
	return false
}

type UsageRecord struct {
	Id          uuid.UUID
	UserId      uuid.UUID
	FeatureKey  FeatureKey
	PeriodStart time.Time
	Count       int
	UpdatedAt   time.Time
}
