package services

import (
	"context"
	"fmt"

	"blog/app/forms"
	"blog/app/mail"
	"blog/app/models"

	log "github.com/sirupsen/logrus"
)

// ShareService emails a post recommendation to a friend
type ShareService struct {
	mailer mail.Mailer
	from   string
	onSend func(sent bool)
}

// NewShareService creates a new ShareService sending as from.
func NewShareService(mailer mail.Mailer, from string) *ShareService {
	return &ShareService{mailer: mailer, from: from}
}

// OnSend registers a callback run after each dispatch attempt.
func (s *ShareService) OnSend(fn func(sent bool)) {
	s.onSend = fn
}

// Share validates form and, when valid, sends one recommendation email for
// post. postURL must be absolute. sent is false when the form has errors.
func (s *ShareService) Share(ctx context.Context, post *models.Post, form *forms.EmailPostForm, postURL string) (sent bool, err error) {
	if !form.Valid() {
		return false, nil
	}

	msg := RecommendationMessage(post, form, postURL)
	msg.From = s.from
	fields := log.Fields{"post_id": post.ID}

	if err := s.mailer.Send(ctx, msg); err != nil {
		log.WithFields(fields).WithError(err).Error("[share] failed to send recommendation")
		s.notify(false)
		return false, fmt.Errorf("failed to share post %d: %w", post.ID, err)
	}
	log.WithFields(fields).Info("[share] recommendation sent")
	s.notify(true)
	return true, nil
}

func (s *ShareService) notify(sent bool) {
	if s.onSend != nil {
		s.onSend(sent)
	}
}

// RecommendationMessage builds the email for a valid share form.
func RecommendationMessage(post *models.Post, form *forms.EmailPostForm, postURL string) mail.Message {
	return mail.Message{
		To:      []string{form.To},
		Subject: fmt.Sprintf("%s (%s) recommends you reading %s", form.Name, form.Email, post.Title),
		Body:    fmt.Sprintf("Read %s at %s\n\n%s's comments: %s", post.Title, postURL, form.Name, form.Comments),
	}
}
