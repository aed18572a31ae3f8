package runtime

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"

	gc "github.com/joshsymonds/hourwatch/internal/gmail"
)

const userID = "me"

// googleClient adapts *gmail.Service to gc.Client.
type googleClient struct{ svc *gmail.Service }

// NewGoogleAPIClient wraps an authorized Gmail service.
func NewGoogleAPIClient(svc *gmail.Service) gc.Client { return &googleClient{svc: svc} }

func (g *googleClient) List(ctx context.Context, q gc.Query, maxResults int) ([]gc.MessageID, error) {
	res, err := g.svc.Users.Messages.List(userID).
		Q(q.Raw).
		MaxResults(int64(maxResults)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, describeAPIError(err)
	}
	return toMessageIDs(res.Messages), nil
}

func (g *googleClient) Get(ctx context.Context, id gc.MessageID) (gc.Message, error) {
	msg, err := g.svc.Users.Messages.Get(userID, string(id)).
		Format("full").
		Context(ctx).
		Do()
	if err != nil {
		return gc.Message{}, describeAPIError(err)
	}
	return toMessage(msg)
}

func toMessageIDs(msgs []*gmail.Message) []gc.MessageID {
	ids := make([]gc.MessageID, 0, len(msgs))
	for _, m := range msgs {
		if m == nil || m.Id == "" {
			continue
		}
		ids = append(ids, gc.MessageID(m.Id))
	}
	return ids
}

func toMessage(msg *gmail.Message) (gc.Message, error) {
	if msg == nil {
		return gc.Message{}, errors.New("empty message response")
	}
	if msg.Payload == nil {
		return gc.Message{}, fmt.Errorf("message %s has no payload", msg.Id)
	}
	return gc.Message{ID: gc.MessageID(msg.Id), Payload: toPart(msg.Payload)}, nil
}

func toPart(p *gmail.MessagePart) gc.Part {
	part := gc.Part{MimeType: p.MimeType}
	if len(p.Headers) > 0 {
		part.Headers = make([]gc.Header, 0, len(p.Headers))
		for _, h := range p.Headers {
			if h == nil {
				continue
			}
			part.Headers = append(part.Headers, gc.Header{Name: h.Name, Value: h.Value})
		}
	}
	if p.Body != nil {
		part.Data = p.Body.Data
	}
	if len(p.Parts) > 0 {
		part.Parts = make([]gc.Part, 0, len(p.Parts))
		for _, child := range p.Parts {
			if child == nil {
				continue
			}
			part.Parts = append(part.Parts, toPart(child))
		}
	}
	return part
}

// describeAPIError prefixes Gmail API failures with their HTTP status.
func describeAPIError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return fmt.Errorf("gmail api status %d: %w", apiErr.Code, err)
	}
	return err
}
