package ledger

import "context"

// AddFolder adds a folder named folderName. Names are unique per project.
func (s *Service) AddFolder(ctx context.Context, projectHash, projectID, folderName string) (ReturnMessage, error) {
	return s.mutate(ctx, TypeAddFolder, projectHash, func(p *Project, stamp UpdateLog) outcome {
		return addFolder(p, stamp, projectID, folderName)
	})
}

// AddSubFolder adds a sub-folder. Names are unique across the whole project,
// not only within folderID.
func (s *Service) AddSubFolder(ctx context.Context, projectHash, projectID, folderID, subFolderName string) (ReturnMessage, error) {
	return s.mutate(ctx, TypeAddSubFolder, projectHash, func(p *Project, stamp UpdateLog) outcome {
		return addSubFolder(p, stamp, projectID, folderID, subFolderName)
	})
}

func addFolder(p *Project, stamp UpdateLog, projectID, folderName string) outcome {
	if p.folderIndex(folderName) >= 0 {
		return conflict(msgFolderExists)
	}
	p.Folders = append(p.Folders, Folder{
		FolderHash: FolderHash(projectID, folderName),
		ProjectID:  projectID,
		FolderName: folderName,
		UpdateLogs: stamp,
	})
	return applied(msgFolderAdded)
}

func addSubFolder(p *Project, stamp UpdateLog, projectID, folderID, subFolderName string) outcome {
	if p.subFolderIndex(subFolderName) >= 0 {
		return conflict(msgSubFolderExists)
	}
	p.SubFolders = append(p.SubFolders, SubFolder{
		SubFolderHash: SubFolderHash(folderID, subFolderName),
		ProjectID:     projectID,
		FolderID:      folderID,
		SubFolderName: subFolderName,
		UpdateLogs:    stamp,
	})
	return applied(msgSubFolderAdded)
}
