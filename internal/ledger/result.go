package ledger

// Kind classifies the outcome of an operation independently of its legacy
// numeric result code. Missing nested entities are reported as 409 for some
// validator operations; Kind tells the caller which lookup actually failed.
type Kind string

const (
	KindOK             Kind = "ok"
	KindNoChange       Kind = "no_change"
	KindParentNotFound Kind = "parent_not_found"
	KindChildNotFound  Kind = "child_not_found"
	KindConflict       Kind = "conflict"
)

// Legacy result codes.
const (
	CodeOK       uint = 200
	CodeNotFound uint = 404
	CodeConflict uint = 409
)

// ReturnMessage is the uniform result of every mutating operation.
type ReturnMessage struct {
	Result          uint   `json:"result"`
	Message         string `json:"message"`
	TransactionHash string `json:"transaction_hash"`
	Kind            Kind   `json:"kind"`
}

// OK reports whether the operation succeeded, including idempotent no-ops.
func (m ReturnMessage) OK() bool { return m.Result == CodeOK }

// ProjectReturnMessage is returned by AddProject. Hash is set on conflict too.
type ProjectReturnMessage struct {
	ReturnMessage
	Hash string `json:"hash"`
}

// ProjectQuery is the result of QueryProject. Result stays 200 whether or not
// the project exists; Found carries the distinction.
type ProjectQuery struct {
	ReturnMessage
	Found     bool      `json:"found"`
	CreatedBy string    `json:"created_by,omitempty"`
	Created   UpdateLog `json:"update_logs"`
}

const (
	msgProjectNotFound = "Project not found"
	msgProjectFound    = "Project found"
	msgProjectAdded    = "Project added successfully"
	msgProjectExists   = "Project already exists"

	msgFolderAdded     = "Folder added successfully"
	msgFolderExists    = "Folder with the same name already exists"
	msgSubFolderAdded  = "Sub folder added successfully"
	msgSubFolderExists = "Sub folder with the same name already exists"

	msgUserAdded          = "User added successfully"
	msgUserExists         = "User already exists"
	msgUserNotFound       = "User not found"
	msgUserAccessAdded    = "User's access added successfully"
	msgUserAccessEnabled  = "User's access is already enabled"
	msgUserAccessRemoved  = "User's access removed successfully"
	msgUserAccessDisabled = "User's access is already disabled"

	msgFileAdded           = "File added successfully"
	msgFileExists          = "File already exists"
	msgFileNotFound        = "File not found"
	msgFileAccepted        = "File status accepted successfully"
	msgFileAlreadyAccepted = "File status already accepted"
	msgFileRejected        = "File status rejected successfully"
	msgFileAlreadyRejected = "File status already rejected"
	msgFileUpdated         = "File status updated successfully"

	msgFileDoesNotExist        = "File does not exist"
	msgValidatorAdded          = "File validator added successfully"
	msgValidatorExists         = "File validator already exists"
	msgValidatorDoesNotExist   = "File validator does not exist"
	msgValidatorAccessAdded    = "File validator's access added successfully"
	msgValidatorAccessEnabled  = "File validator's access is already enabled"
	msgValidatorAccessRemoved  = "File validator's access removed successfully"
	msgValidatorAccessDisabled = "File validator's access is already disabled"
	msgValidatorUpdated        = "File validator status updated successfully"

	msgSupplierAdded  = "Supplier added successfully"
	msgSupplierExists = "Supplier with the same email already exists"
)

// outcome is what a pure transform reports back to the service.
type outcome struct {
	kind    Kind
	code    uint
	message string
	changed bool
}

func applied(msg string) outcome {
	return outcome{kind: KindOK, code: CodeOK, message: msg, changed: true}
}

func unchanged(msg string) outcome {
	return outcome{kind: KindNoChange, code: CodeOK, message: msg}
}

func conflict(msg string) outcome {
	return outcome{kind: KindConflict, code: CodeConflict, message: msg}
}

// missing builds a not-found outcome with an explicit legacy code, since the
// validator operations report missing entities as 409.
func missing(kind Kind, code uint, msg string) outcome {
	return outcome{kind: kind, code: code, message: msg}
}

func (o outcome) result(txHash string) ReturnMessage {
	return ReturnMessage{Result: o.code, Message: o.message, TransactionHash: txHash, Kind: o.kind}
}
