package ledger

import "context"

// AddFile adds a file with a caller-supplied hash. New files start RED.
func (s *Service) AddFile(ctx context.Context, projectHash, fileHash, fileTitle, userID, folderID, expiryDate string) (ReturnMessage, error) {
	return s.mutate(ctx, TypeAddFile, projectHash, func(p *Project, stamp UpdateLog) outcome {
		return addFile(p, stamp, fileHash, fileTitle, userID, folderID, expiryDate)
	})
}

// AcceptFile moves the file to GREEN.
func (s *Service) AcceptFile(ctx context.Context, projectHash, fileHash string) (ReturnMessage, error) {
	return s.mutate(ctx, TypeAcceptFile, projectHash, func(p *Project, _ UpdateLog) outcome {
		return setFileStatus(p, fileHash, StatusGreen, msgFileAccepted, msgFileAlreadyAccepted)
	})
}

// RejectFile moves the file to RED.
func (s *Service) RejectFile(ctx context.Context, projectHash, fileHash string) (ReturnMessage, error) {
	return s.mutate(ctx, TypeRejectFile, projectHash, func(p *Project, _ UpdateLog) outcome {
		return setFileStatus(p, fileHash, StatusRed, msgFileRejected, msgFileAlreadyRejected)
	})
}

// UpdateFile sets an arbitrary status. Values outside the known colours are
// stored verbatim and logged as custom.
func (s *Service) UpdateFile(ctx context.Context, projectHash, fileHash string, status FileStatus) (ReturnMessage, error) {
	if !status.IsKnown() {
		s.logger.Warn("custom file status", "project", projectHash, "file", fileHash, "status", string(status))
	}
	return s.mutate(ctx, TypeUpdateFile, projectHash, func(p *Project, _ UpdateLog) outcome {
		return updateFile(p, fileHash, status)
	})
}

func addFile(p *Project, stamp UpdateLog, fileHash, fileTitle, userID, folderID, expiryDate string) outcome {
	if p.fileIndex(fileHash) >= 0 {
		return conflict(msgFileExists)
	}
	p.Files = append(p.Files, File{
		FileHash:   fileHash,
		FileTitle:  fileTitle,
		UserID:     userID,
		FolderID:   folderID,
		ExpiryDate: expiryDate,
		FileStatus: StatusRed,
		Validators: []Validator{},
		UpdateLogs: stamp,
	})
	return applied(msgFileAdded)
}

func setFileStatus(p *Project, fileHash string, status FileStatus, done, already string) outcome {
	i := p.fileIndex(fileHash)
	if i < 0 {
		return missing(KindChildNotFound, CodeNotFound, msgFileNotFound)
	}
	if p.Files[i].FileStatus == status {
		return unchanged(already)
	}
	p.Files[i].FileStatus = status
	return applied(done)
}

// updateFile always writes, even when the status is unchanged.
func updateFile(p *Project, fileHash string, status FileStatus) outcome {
	i := p.fileIndex(fileHash)
	if i < 0 {
		return missing(KindChildNotFound, CodeNotFound, msgFileNotFound)
	}
	p.Files[i].FileStatus = status
	return applied(msgFileUpdated)
}
