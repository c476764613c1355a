package ledger

import (
	"errors"
	"strconv"
	"time"
)

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrProjectExists   = errors.New("project already exists")
	ErrProjectModified = errors.New("project modified concurrently")
)

// TransactionType labels the operation that produced a journal entry or
// created an entity.
type TransactionType string

const (
	TypeAddProject            TransactionType = "Add Project"
	TypeAddFolder             TransactionType = "Add Folder"
	TypeAddSubFolder          TransactionType = "Add Sub Folder"
	TypeAddUser               TransactionType = "Add User"
	TypeAddUserAccess         TransactionType = "Add User Access"
	TypeRemoveUserAccess      TransactionType = "Remove User Access"
	TypeAddFile               TransactionType = "Add File"
	TypeAcceptFile            TransactionType = "Accept File"
	TypeRejectFile            TransactionType = "Reject File"
	TypeUpdateFile            TransactionType = "Update File"
	TypeAddValidator          TransactionType = "Add Validator"
	TypeAddValidatorAccess    TransactionType = "Add Validator Access"
	TypeRemoveValidatorAccess TransactionType = "Remove Validator Access"
	TypeValidateFile          TransactionType = "Update Validator After File Validation"
	TypeAddSupplier           TransactionType = "Add Supplier"
	TypeImportProject         TransactionType = "Import Project"
)

// UpdateLog is the audit record embedded in every entity. It is written once
// when the entity is created and never rewritten.
type UpdateLog struct {
	TimeStamp       time.Time       `json:"time_stamp"`
	TransactionHash string          `json:"transaction_hash"`
	TransactionType TransactionType `json:"transaction_type"`
}

// Project is the aggregate root. It owns every nested collection by value.
// Version counts successful writes; stores reject an Update whose Version
// does not directly follow the stored one.
type Project struct {
	ProjectHash string      `json:"project_hash"`
	Version     int64       `json:"version"`
	CreatedBy   string      `json:"created_by"`
	Folders     []Folder    `json:"folders"`
	SubFolders  []SubFolder `json:"sub_folders"`
	Users       []User      `json:"users"`
	Files       []File      `json:"files"`
	Suppliers   []Supplier  `json:"suppliers"`
	UpdateLogs  UpdateLog   `json:"update_logs"`
}

// Folder is identified by hash(project_id, folder_name).
type Folder struct {
	FolderHash string    `json:"folder_hash"`
	ProjectID  string    `json:"project_id"`
	FolderName string    `json:"folder_name"`
	UpdateLogs UpdateLog `json:"update_logs"`
}

// SubFolder is identified by hash(folder_id, sub_folder_name).
type SubFolder struct {
	SubFolderHash string    `json:"sub_folder_hash"`
	ProjectID     string    `json:"project_id"`
	FolderID      string    `json:"folder_id"`
	SubFolderName string    `json:"sub_folder_name"`
	UpdateLogs    UpdateLog `json:"update_logs"`
}

// User is a project member. The ID is supplied by the caller.
type User struct {
	UserID     string    `json:"user_id"`
	UserName   string    `json:"user_name"`
	IsRevoked  bool      `json:"is_revoked"`
	UpdateLogs UpdateLog `json:"update_logs"`
}

// File is an uploaded document. FileHash is supplied by the caller.
type File struct {
	FileHash   string      `json:"file_hash"`
	FileTitle  string      `json:"file_title"`
	UserID     string      `json:"user_id"`
	FolderID   string      `json:"folder_id"`
	ExpiryDate string      `json:"expiry_date"`
	FileStatus FileStatus  `json:"file_status"`
	Validators []Validator `json:"validators"`
	UpdateLogs UpdateLog   `json:"update_logs"`
}

// Validator holds one reviewer's access state and opinion on a file.
// FileStatus here is the validator's own opinion, independent of the file's.
type Validator struct {
	ValidatorID           string     `json:"validator_id"`
	ValidatorIP           string     `json:"validator_ip"`
	ValidatorEmail        string     `json:"validator_email"`
	ValidatorOrganization string     `json:"validator_organization"`
	IsRevoked             bool       `json:"is_revoked"`
	CanSign               string     `json:"can_sign"`
	FileValidationHash    string     `json:"file_validation_hash"`
	FileStatus            FileStatus `json:"file_status"`
	UpdateLogs            UpdateLog  `json:"update_logs"`
}

// Signer reports whether CanSign holds a true boolean literal.
func (v Validator) Signer() bool {
	ok, err := strconv.ParseBool(v.CanSign)
	return err == nil && ok
}

// Supplier is keyed by SupplierEmail within a project.
type Supplier struct {
	Category           string    `json:"category"`
	ContactName        string    `json:"contact_name"`
	SupplierID         string    `json:"supplier_id"`
	SupplierEmail      string    `json:"supplier_email"`
	CompanyName        string    `json:"company_name"`
	CompanyWebsite     string    `json:"company_website"`
	RequestedDocuments string    `json:"requested_documents"`
	UpdateLogs         UpdateLog `json:"update_logs"`
}

// Clone returns a deep copy of the project. Mutations are applied to a clone
// so the stored aggregate is untouched until the write succeeds.
func (p *Project) Clone() *Project {
	if p == nil {
		return nil
	}
	out := *p
	out.Folders = append(make([]Folder, 0, len(p.Folders)), p.Folders...)
	out.SubFolders = append(make([]SubFolder, 0, len(p.SubFolders)), p.SubFolders...)
	out.Users = append(make([]User, 0, len(p.Users)), p.Users...)
	out.Suppliers = append(make([]Supplier, 0, len(p.Suppliers)), p.Suppliers...)
	out.Files = make([]File, len(p.Files))
	for i, f := range p.Files {
		f.Validators = append(make([]Validator, 0, len(f.Validators)), f.Validators...)
		out.Files[i] = f
	}
	return &out
}

// newProject returns an empty project at version 1. Collections are non-nil
// so they encode as [] rather than null.
func newProject(hash, createdBy string, stamp UpdateLog) *Project {
	return &Project{
		ProjectHash: hash,
		Version:     1,
		CreatedBy:   createdBy,
		Folders:     []Folder{},
		SubFolders:  []SubFolder{},
		Users:       []User{},
		Files:       []File{},
		Suppliers:   []Supplier{},
		UpdateLogs:  stamp,
	}
}

func (p *Project) folderIndex(name string) int {
	for i := range p.Folders {
		if p.Folders[i].FolderName == name {
			return i
		}
	}
	return -1
}

func (p *Project) subFolderIndex(name string) int {
	for i := range p.SubFolders {
		if p.SubFolders[i].SubFolderName == name {
			return i
		}
	}
	return -1
}

func (p *Project) userIndex(userID string) int {
	for i := range p.Users {
		if p.Users[i].UserID == userID {
			return i
		}
	}
	return -1
}

func (p *Project) fileIndex(fileHash string) int {
	for i := range p.Files {
		if p.Files[i].FileHash == fileHash {
			return i
		}
	}
	return -1
}

func (p *Project) supplierIndex(email string) int {
	for i := range p.Suppliers {
		if p.Suppliers[i].SupplierEmail == email {
			return i
		}
	}
	return -1
}

func (f *File) validatorIndex(validatorID string) int {
	for i := range f.Validators {
		if f.Validators[i].ValidatorID == validatorID {
			return i
		}
	}
	return -1
}

func (f *File) validatorIndexByEmail(email string) int {
	for i := range f.Validators {
		if f.Validators[i].ValidatorEmail == email {
			return i
		}
	}
	return -1
}
