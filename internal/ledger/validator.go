package ledger

import "context"

// ValidatorInput carries the caller-supplied fields of a new validator.
type ValidatorInput struct {
	ID           string
	IP           string
	Email        string
	Organization string
	CanSign      string
}

// AddValidator attaches a validator to a file. A missing file is reported
// as 409, and validator ids are unique per file.
func (s *Service) AddValidator(ctx context.Context, projectHash, fileHash string, in ValidatorInput) (ReturnMessage, error) {
	return s.mutate(ctx, TypeAddValidator, projectHash, func(p *Project, stamp UpdateLog) outcome {
		return addValidator(p, stamp, fileHash, in)
	})
}

// AddValidatorAccess clears the validator's revocation flag. The validator
// is looked up by id. The trailing email argument is kept for call
// compatibility and is not used.
func (s *Service) AddValidatorAccess(ctx context.Context, projectHash, fileHash, validatorID, _ string) (ReturnMessage, error) {
	return s.mutate(ctx, TypeAddValidatorAccess, projectHash, func(p *Project, _ UpdateLog) outcome {
		return setValidatorRevoked(p, fileHash, validatorID, false)
	})
}

// RemoveValidatorAccess sets the validator's revocation flag. Like
// AddValidatorAccess it matches by id only.
func (s *Service) RemoveValidatorAccess(ctx context.Context, projectHash, fileHash, validatorID, _ string) (ReturnMessage, error) {
	return s.mutate(ctx, TypeRemoveValidatorAccess, projectHash, func(p *Project, _ UpdateLog) outcome {
		return setValidatorRevoked(p, fileHash, validatorID, true)
	})
}

// UpdateValidatorAfterFileValidation records a validator's own opinion of a
// file. The validator is looked up by email. The file's status is left as is.
func (s *Service) UpdateValidatorAfterFileValidation(ctx context.Context, projectHash, fileHash, validatorEmail string, status FileStatus) (ReturnMessage, error) {
	if !status.IsKnown() {
		s.logger.Warn("custom validator status", "project", projectHash, "file", fileHash, "status", string(status))
	}
	return s.mutate(ctx, TypeValidateFile, projectHash, func(p *Project, stamp UpdateLog) outcome {
		return recordValidation(p, stamp, fileHash, validatorEmail, status)
	})
}

func addValidator(p *Project, stamp UpdateLog, fileHash string, in ValidatorInput) outcome {
	fi := p.fileIndex(fileHash)
	if fi < 0 {
		return missing(KindParentNotFound, CodeConflict, msgFileDoesNotExist)
	}
	f := &p.Files[fi]
	if f.validatorIndex(in.ID) >= 0 {
		return conflict(msgValidatorExists)
	}
	f.Validators = append(f.Validators, Validator{
		ValidatorID:           in.ID,
		ValidatorIP:           in.IP,
		ValidatorEmail:        in.Email,
		ValidatorOrganization: in.Organization,
		CanSign:               in.CanSign,
		FileStatus:            StatusNone,
		UpdateLogs:            stamp,
	})
	return applied(msgValidatorAdded)
}

func setValidatorRevoked(p *Project, fileHash, validatorID string, revoked bool) outcome {
	fi := p.fileIndex(fileHash)
	if fi < 0 {
		return missing(KindParentNotFound, CodeConflict, msgFileDoesNotExist)
	}
	f := &p.Files[fi]
	vi := f.validatorIndex(validatorID)
	if vi < 0 {
		return missing(KindChildNotFound, CodeConflict, msgValidatorDoesNotExist)
	}
	v := &f.Validators[vi]
	if v.IsRevoked == revoked {
		if revoked {
			return unchanged(msgValidatorAccessDisabled)
		}
		return unchanged(msgValidatorAccessEnabled)
	}
	v.IsRevoked = revoked
	if revoked {
		return applied(msgValidatorAccessRemoved)
	}
	return applied(msgValidatorAccessAdded)
}

// recordValidation always writes; the transaction hash of the call becomes
// the validator's file_validation_hash.
func recordValidation(p *Project, stamp UpdateLog, fileHash, validatorEmail string, status FileStatus) outcome {
	fi := p.fileIndex(fileHash)
	if fi < 0 {
		return missing(KindParentNotFound, CodeConflict, msgFileDoesNotExist)
	}
	f := &p.Files[fi]
	vi := f.validatorIndexByEmail(validatorEmail)
	if vi < 0 {
		return missing(KindChildNotFound, CodeConflict, msgValidatorDoesNotExist)
	}
	f.Validators[vi].FileStatus = status
	f.Validators[vi].FileValidationHash = stamp.TransactionHash
	return applied(msgValidatorUpdated)
}
