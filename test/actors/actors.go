// Package actors holds the concurrent workloads the marketplace stress test
// drives against a live database. Each actor loops until stopped, going
// through the real service layer so contention hits the same code paths as
// production traffic. Transient database errors are retried rather than
// failed; the oracles judge the resulting state.
package actors

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"homelist/auth"
	"homelist/property"
)

// Registrar hammers registration with a small e-mail pool so duplicate
// attempts collide. Exactly one registration per address may ever win; the
// rest must come back as duplicates.
func Registrar(ctx context.Context, svc *auth.Service, emails []string, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}
		email := emails[rand.Intn(len(emails))]
		_, err := svc.Register(ctx, auth.RegisterRequest{
			Name:     "Stress User",
			Email:    email,
			Password: "stresspassword",
		})
		if err != nil && !errors.Is(err, auth.ErrDuplicateEmail) {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// transient; chaos may have killed the backend
		}
		time.Sleep(time.Duration(10+rand.Intn(20)) * time.Millisecond)
	}
}

// Lister creates fresh listings for the given owner.
func Lister(ctx context.Context, svc *property.Service, ownerID string, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}
		_, _ = svc.Create(ctx, property.CreateParams{
			UserID: ownerID,
			Title:  fmt.Sprintf("Stress listing %d", rand.Int63()),
			Price:  float64(50000 + rand.Intn(500000)),
			Location: property.Location{
				Country: "Kazakhstan",
				City:    "Almaty",
			},
		})
		time.Sleep(time.Duration(20+rand.Intn(40)) * time.Millisecond)
	}
}

// ImageAppender keeps appending image paths to one listing. Appends from
// competing connections must all land; none may overwrite another.
func ImageAppender(ctx context.Context, svc *property.Service, propertyID string, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}
		path := fmt.Sprintf("uploads/properties/%d.jpg", rand.Int63())
		if _, err := svc.AddImages(ctx, propertyID, []string{path}); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, property.ErrNotFound) {
				return fmt.Errorf("image appender: listing vanished: %w", err)
			}
		}
		time.Sleep(time.Duration(15+rand.Intn(35)) * time.Millisecond)
	}
}

// StatusFlipper toggles one listing between active and sold through full
// replaces. A replace carries the whole row, so it gets its own listing; the
// API makes no ordering promise between a replace and a concurrent append.
func StatusFlipper(ctx context.Context, svc *property.Service, propertyID string, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}
		current, err := svc.GetByID(ctx, propertyID)
		if err == nil {
			next := property.StatusSold
			if current.Status == property.StatusSold {
				next = property.StatusActive
			}
			_, _ = svc.Update(ctx, propertyID, property.UpdateParams{
				Title:       current.Title,
				Description: current.Description,
				Location:    current.Location,
				Price:       current.Price,
				Type:        current.Type,
				Status:      next,
				Bedrooms:    current.Bedrooms,
				Bathrooms:   current.Bathrooms,
				Area:        current.Area,
				Features:    current.Features,
				Images:      current.Images,
			})
		} else if ctx.Err() != nil {
			return ctx.Err()
		}
		time.Sleep(time.Duration(30+rand.Intn(50)) * time.Millisecond)
	}
}

// Browser reads the public surfaces the whole time, so readers overlap every
// writer.
func Browser(ctx context.Context, svc *property.Service, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}
		_, _ = svc.GetAll(ctx)
		_, _ = svc.FindAllActive(ctx)
		time.Sleep(time.Duration(25+rand.Intn(50)) * time.Millisecond)
	}
}
