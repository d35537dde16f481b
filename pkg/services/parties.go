package services

import (
	"context"
	"fmt"

	"github.com/dukex/docflow/pkg/directory"
	"github.com/dukex/docflow/pkg/models"
	"golang.org/x/sync/errgroup"
)

// DocumentDetails is a document view whose creator and addresses are
// resolved against the directory.
type DocumentDetails struct {
	*models.DocumentView

	Creator   *directory.User `json:"creator"`
	Sender    PartyGroups     `json:"sender"`
	Recipient PartyGroups     `json:"recipient"`
}

// PartyGroups lists the resolved parties on one side of a document.
// Parties the directory does not know are left out, except external users,
// which are listed with a nil user.
type PartyGroups struct {
	Users         []*directory.User         `json:"users"`
	ExternalUsers []ExternalParty           `json:"external_users"`
	Organizations []*directory.Organization `json:"organizations"`
}

// ExternalParty pairs an external person with the organization they act for.
type ExternalParty struct {
	User         *directory.ExternalUser `json:"user"`
	Organization *directory.Organization `json:"organization"`
}

type parties struct {
	users         map[string]*directory.User
	organizations map[string]*directory.Organization
	externalUsers map[string]*directory.ExternalUser
}

// resolveParties looks up every party of views with one batched directory
// call per party kind.
func (d *Document) resolveParties(ctx context.Context, views []*models.DocumentView) ([]*DocumentDetails, error) {
	userIDs, organizationIDs, externalUserIDs := collectPartyIDs(views)

	var resolved parties

	g, gctx := errgroup.WithContext(ctx)

	if len(userIDs) > 0 {
		g.Go(func() error {
			var err error
			resolved.users, err = d.directory.Users(gctx, userIDs)

			return err
		})
	}

	if len(organizationIDs) > 0 {
		g.Go(func() error {
			var err error
			resolved.organizations, err = d.directory.Organizations(gctx, organizationIDs)

			return err
		})
	}

	if len(externalUserIDs) > 0 {
		g.Go(func() error {
			var err error
			resolved.externalUsers, err = d.directory.ExternalUsers(gctx, externalUserIDs)

			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to resolve document parties: %w", err)
	}

	details := make([]*DocumentDetails, 0, len(views))
	for _, view := range views {
		details = append(details, resolved.details(view))
	}

	return details, nil
}

func collectPartyIDs(views []*models.DocumentView) (userIDs, organizationIDs, externalUserIDs []string) {
	users := newIDSet()
	organizations := newIDSet()
	externalUsers := newIDSet()

	for _, view := range views {
		users.add(view.CreatorID)

		for _, address := range view.Addresses {
			users.addPtr(address.UserID)
			organizations.addPtr(address.OrganizationID)
			externalUsers.addPtr(address.ExternalUserID)
		}
	}

	return users.ids, organizations.ids, externalUsers.ids
}

func (p parties) details(view *models.DocumentView) *DocumentDetails {
	var sender, recipient []*models.DocumentAddress

	for _, address := range view.Addresses {
		if address.PartyType == models.PartyTypeSender {
			sender = append(sender, address)
		} else {
			recipient = append(recipient, address)
		}
	}

	return &DocumentDetails{
		DocumentView: view,
		Creator:      p.users[view.CreatorID],
		Sender:       p.group(sender),
		Recipient:    p.group(recipient),
	}
}

// group lists users by id, external users by (user, organization) pair and
// organizations only for addresses naming nothing but the organization.
func (p parties) group(addresses []*models.DocumentAddress) PartyGroups {
	groups := PartyGroups{
		Users:         []*directory.User{},
		ExternalUsers: []ExternalParty{},
		Organizations: []*directory.Organization{},
	}

	seenUsers := make(map[string]struct{})
	seenOrganizations := make(map[string]struct{})
	seenExternal := make(map[[2]string]struct{})

	for _, address := range addresses {
		userID := deref(address.UserID)
		organizationID := deref(address.OrganizationID)
		externalUserID := deref(address.ExternalUserID)

		if userID != "" {
			if _, ok := seenUsers[userID]; !ok {
				seenUsers[userID] = struct{}{}

				if user, ok := p.users[userID]; ok {
					groups.Users = append(groups.Users, user)
				}
			}
		}

		if organizationID != "" && userID == "" && externalUserID == "" {
			if _, ok := seenOrganizations[organizationID]; !ok {
				seenOrganizations[organizationID] = struct{}{}

				if organization, ok := p.organizations[organizationID]; ok {
					groups.Organizations = append(groups.Organizations, organization)
				}
			}
		}

		if externalUserID != "" {
			key := [2]string{externalUserID, organizationID}
			if _, ok := seenExternal[key]; !ok {
				seenExternal[key] = struct{}{}
				groups.ExternalUsers = append(groups.ExternalUsers, ExternalParty{
					User:         p.externalUsers[externalUserID],
					Organization: p.organizations[organizationID],
				})
			}
		}
	}

	return groups
}

type idSet struct {
	seen map[string]struct{}
	ids  []string
}

func newIDSet() *idSet {
	return &idSet{seen: make(map[string]struct{}), ids: []string{}}
}

func (s *idSet) add(id string) {
	if id == "" {
		return
	}

	if _, ok := s.seen[id]; ok {
		return
	}

	s.seen[id] = struct{}{}
	s.ids = append(s.ids, id)
}

func (s *idSet) addPtr(id *string) {
	if id != nil {
		s.add(*id)
	}
}

func deref(value *string) string {
	if value == nil {
		return ""
	}

	return *value
}
