package ledger

import "context"

// AddUser adds a user with a caller-supplied id. New users have access.
func (s *Service) AddUser(ctx context.Context, projectHash, userName, userID string) (ReturnMessage, error) {
	return s.mutate(ctx, TypeAddUser, projectHash, func(p *Project, stamp UpdateLog) outcome {
		return addUser(p, stamp, userName, userID)
	})
}

// AddUserAccess clears the user's revocation flag.
func (s *Service) AddUserAccess(ctx context.Context, projectHash, userID string) (ReturnMessage, error) {
	return s.mutate(ctx, TypeAddUserAccess, projectHash, func(p *Project, _ UpdateLog) outcome {
		return setUserRevoked(p, userID, false)
	})
}

// RemoveUserAccess sets the user's revocation flag.
func (s *Service) RemoveUserAccess(ctx context.Context, projectHash, userID string) (ReturnMessage, error) {
	return s.mutate(ctx, TypeRemoveUserAccess, projectHash, func(p *Project, _ UpdateLog) outcome {
		return setUserRevoked(p, userID, true)
	})
}

func addUser(p *Project, stamp UpdateLog, userName, userID string) outcome {
	if p.userIndex(userID) >= 0 {
		return conflict(msgUserExists)
	}
	p.Users = append(p.Users, User{
		UserID:     userID,
		UserName:   userName,
		UpdateLogs: stamp,
	})
	return applied(msgUserAdded)
}

func setUserRevoked(p *Project, userID string, revoked bool) outcome {
	i := p.userIndex(userID)
	if i < 0 {
		return missing(KindChildNotFound, CodeNotFound, msgUserNotFound)
	}
	if p.Users[i].IsRevoked == revoked {
		if revoked {
			return unchanged(msgUserAccessDisabled)
		}
		return unchanged(msgUserAccessEnabled)
	}
	p.Users[i].IsRevoked = revoked
	if revoked {
		return applied(msgUserAccessRemoved)
	}
	return applied(msgUserAccessAdded)
}
