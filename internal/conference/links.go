package conference

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/NestyJo/video-chat-backend/internal/models"
)

// LinkBuilder formats the join links that organizers hand to invitees.
type LinkBuilder struct {
	baseURL string
}

func NewLinkBuilder(baseURL string) *LinkBuilder {
	return &LinkBuilder{baseURL: strings.TrimRight(baseURL, "/")}
}

// ShareLink returns the public join URL for a meeting. With includePassword
// the join password rides along as a query parameter, so one link admits the
// recipient to a protected meeting.
func (b *LinkBuilder) ShareLink(m *models.Meeting, includePassword bool) string {
	link := fmt.Sprintf("%s/join/%s", b.baseURL, m.ID)
	if includePassword && m.Password != nil {
		link += "?pwd=" + url.QueryEscape(*m.Password)
	}
	return link
}
