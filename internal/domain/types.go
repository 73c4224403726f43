package domain

import "github.com/google/uuid"

type UserID = uuid.UUID
type AccountID = uuid.UUID
type MembershipID = uuid.UUID
type InvitationID = uuid.UUID
type APITokenID = uuid.UUID
type ConnectedAccountID = uuid.UUID
type PlanID = uuid.UUID
