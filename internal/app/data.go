package service

import (
	"context"
	"sync"

	"github.com/opskitchen/shiftboard/internal/domain/model"
)

// StaticData is an in-memory OpsData, used in tests and as the default
// until a platform-backed source is wired in.
type StaticData struct {
	mu          sync.RWMutex
	identities  []model.Identity
	submissions []model.Submission
	templates   []model.Template
	reviews     []model.Review
}

// NewStaticData creates an empty in-memory data source.
func NewStaticData() *StaticData {
	return &StaticData{}
}

// SetIdentities replaces the identity set.
func (d *StaticData) SetIdentities(identities []model.Identity) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.identities = identities
}

// SetSubmissions replaces the submission set.
func (d *StaticData) SetSubmissions(submissions []model.Submission) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.submissions = submissions
}

// SetTemplates replaces the template set.
func (d *StaticData) SetTemplates(templates []model.Template) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.templates = templates
}

// SetReviews replaces the review set.
func (d *StaticData) SetReviews(reviews []model.Review) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reviews = reviews
}

func (d *StaticData) Identities(_ context.Context) ([]model.Identity, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]model.Identity(nil), d.identities...), nil
}

func (d *StaticData) Submissions(_ context.Context) ([]model.Submission, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]model.Submission(nil), d.submissions...), nil
}

func (d *StaticData) Templates(_ context.Context) ([]model.Template, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]model.Template(nil), d.templates...), nil
}

func (d *StaticData) Reviews(_ context.Context) ([]model.Review, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]model.Review(nil), d.reviews...), nil
}
