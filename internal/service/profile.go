package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/deskboard/internal/docstore"
	"github.com/sakif/deskboard/internal/model"
)

// ProfileService reads and writes the profile fields stored at users/{uid}.
//
// WHY UPDATE AND NOT SET?
// The products live below the same node (users/{uid}/products). Replacing
// the whole node on save or delete would wipe them, so both operations touch
// only the twelve profile fields.
type ProfileService struct {
	store  DocumentStore
	logger *slog.Logger
}

func NewProfileService(store DocumentStore, logger *slog.Logger) *ProfileService {
	return &ProfileService{store: store, logger: logger}
}

func profilePath(uid string) string {
	return docstore.Join("users", uid)
}

// Get returns the stored profile, or the default profile when the user has
// never saved one. UID is always the caller's.
func (s *ProfileService) Get(ctx context.Context, uid string) (model.Profile, error) {
	snap, err := s.store.Get(ctx, profilePath(uid))
	if err != nil {
		return model.Profile{}, fmt.Errorf("service/profile: getting profile %s: %w", uid, err)
	}

	p := model.DefaultProfile(uid)
	if snap.Exists() {
		if err := snap.Decode(&p); err != nil {
			return model.Profile{}, fmt.Errorf("service/profile: %w", err)
		}
		p.UID = uid
	}
	return p, nil
}

// Save overwrites every profile field with p's.
func (s *ProfileService) Save(ctx context.Context, uid string, p model.Profile) (model.Profile, error) {
	p.UID = uid
	if err := s.store.Update(ctx, profilePath(uid), p.Fields()); err != nil {
		return model.Profile{}, fmt.Errorf("service/profile: saving profile %s: %w", uid, err)
	}
	s.logger.Info("profile saved", slog.String("uid", uid))
	return p, nil
}

// Delete clears the profile fields and returns the default profile.
func (s *ProfileService) Delete(ctx context.Context, uid string) (model.Profile, error) {
	fields := model.DefaultProfile(uid).Fields()
	for k := range fields {
		fields[k] = nil
	}
	if err := s.store.Update(ctx, profilePath(uid), fields); err != nil {
		return model.Profile{}, fmt.Errorf("service/profile: deleting profile %s: %w", uid, err)
	}
	s.logger.Info("profile deleted", slog.String("uid", uid))
	return model.DefaultProfile(uid), nil
}
