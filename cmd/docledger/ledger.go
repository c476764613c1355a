package main

import (
	"context"

	"github.com/spf13/cobra"

	"docledger/internal/app"
	"docledger/internal/ledger"
)

// project

var projectCreatedBy string

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
}

var projectAddCmd = &cobra.Command{
	Use:   "add NAME LOGO",
	Short: "Create a project keyed by hash(logo, name)",
	Args:  cobra.ExactArgs(2),
	RunE: withApp("AddProject", func(ctx context.Context, a *app.DocLedgerApp, args []string) (any, error) {
		createdBy := projectCreatedBy
		if createdBy == "" {
			createdBy = a.OperatorID()
		}
		return a.Ledger().AddProject(ctx, args[0], args[1], createdBy)
	}),
}

var projectQueryCmd = &cobra.Command{
	Use:   "query PROJECT",
	Short: "Report whether a project exists",
	Args:  cobra.ExactArgs(1),
	RunE: withApp("QueryProject", func(ctx context.Context, a *app.DocLedgerApp, args []string) (any, error) {
		return a.Ledger().QueryProject(ctx, args[0])
	}),
}

var projectShowCmd = &cobra.Command{
	Use:   "show PROJECT",
	Short: "Print the full project aggregate",
	Args:  cobra.ExactArgs(1),
	RunE: withApp("GetProject", func(ctx context.Context, a *app.DocLedgerApp, args []string) (any, error) {
		return a.Ledger().GetProject(ctx, args[0])
	}),
}

// folder and subfolder

var folderProjectID string

var folderCmd = &cobra.Command{
	Use:   "folder",
	Short: "Manage folders",
}

var folderAddCmd = &cobra.Command{
	Use:   "add PROJECT NAME",
	Short: "Add a folder to a project",
	Args:  cobra.ExactArgs(2),
	RunE: withApp("AddFolder", func(ctx context.Context, a *app.DocLedgerApp, args []string) (any, error) {
		return a.Ledger().AddFolder(ctx, args[0], projectIDOr(args[0]), args[1])
	}),
}

var subFolderCmd = &cobra.Command{
	Use:   "subfolder",
	Short: "Manage sub folders",
}

var subFolderAddCmd = &cobra.Command{
	Use:   "add PROJECT FOLDER_ID NAME",
	Short: "Add a sub folder under a folder",
	Args:  cobra.ExactArgs(3),
	RunE: withApp("AddSubFolder", func(ctx context.Context, a *app.DocLedgerApp, args []string) (any, error) {
		return a.Ledger().AddSubFolder(ctx, args[0], projectIDOr(args[0]), args[1], args[2])
	}),
}

// projectIDOr returns --project-id, defaulting to the project hash.
func projectIDOr(projectHash string) string {
	if folderProjectID != "" {
		return folderProjectID
	}
	return projectHash
}

// user

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage project users",
}

var userAddCmd = &cobra.Command{
	Use:   "add PROJECT USER_ID NAME",
	Short: "Add a user",
	Args:  cobra.ExactArgs(3),
	RunE: withApp("AddUser", func(ctx context.Context, a *app.DocLedgerApp, args []string) (any, error) {
		return a.Ledger().AddUser(ctx, args[0], args[2], args[1])
	}),
}

var userGrantCmd = &cobra.Command{
	Use:   "grant PROJECT USER_ID",
	Short: "Restore a user's access",
	Args:  cobra.ExactArgs(2),
	RunE: withApp("AddUserAccess", func(ctx context.Context, a *app.DocLedgerApp, args []string) (any, error) {
		return a.Ledger().AddUserAccess(ctx, args[0], args[1])
	}),
}

var userRevokeCmd = &cobra.Command{
	Use:   "revoke PROJECT USER_ID",
	Short: "Revoke a user's access",
	Args:  cobra.ExactArgs(2),
	RunE: withApp("RemoveUserAccess", func(ctx context.Context, a *app.DocLedgerApp, args []string) (any, error) {
		return a.Ledger().RemoveUserAccess(ctx, args[0], args[1])
	}),
}

// file

var (
	fileTitle  string
	fileUser   string
	fileFolder string
	fileExpiry string
)

var fileCmd = &cobra.Command{
	Use:   "file",
	Short: "Manage files",
}

var fileAddCmd = &cobra.Command{
	Use:   "add PROJECT FILE_HASH",
	Short: "Register a file; it starts RED",
	Args:  cobra.ExactArgs(2),
	RunE: withApp("AddFile", func(ctx context.Context, a *app.DocLedgerApp, args []string) (any, error) {
		return a.Ledger().AddFile(ctx, args[0], args[1], fileTitle, fileUser, fileFolder, fileExpiry)
	}),
}

var fileAcceptCmd = &cobra.Command{
	Use:   "accept PROJECT FILE_HASH",
	Short: "Set a file GREEN",
	Args:  cobra.ExactArgs(2),
	RunE: withApp("AcceptFile", func(ctx context.Context, a *app.DocLedgerApp, args []string) (any, error) {
		return a.Ledger().AcceptFile(ctx, args[0], args[1])
	}),
}

var fileRejectCmd = &cobra.Command{
	Use:   "reject PROJECT FILE_HASH",
	Short: "Set a file RED",
	Args:  cobra.ExactArgs(2),
	RunE: withApp("RejectFile", func(ctx context.Context, a *app.DocLedgerApp, args []string) (any, error) {
		return a.Ledger().RejectFile(ctx, args[0], args[1])
	}),
}

var fileUpdateCmd = &cobra.Command{
	Use:   "update PROJECT FILE_HASH STATUS",
	Short: "Set a file status verbatim",
	Args:  cobra.ExactArgs(3),
	RunE: withApp("UpdateFile", func(ctx context.Context, a *app.DocLedgerApp, args []string) (any, error) {
		return a.Ledger().UpdateFile(ctx, args[0], args[1], ledger.FileStatus(args[2]))
	}),
}

// validator

var (
	validatorEmail   string
	validatorIP      string
	validatorOrg     string
	validatorCanSign string
)

var validatorCmd = &cobra.Command{
	Use:   "validator",
	Short: "Manage file validators",
}

var validatorAddCmd = &cobra.Command{
	Use:   "add PROJECT FILE_HASH VALIDATOR_ID",
	Short: "Attach a validator to a file",
	Args:  cobra.ExactArgs(3),
	RunE: withApp("AddValidator", func(ctx context.Context, a *app.DocLedgerApp, args []string) (any, error) {
		return a.Ledger().AddValidator(ctx, args[0], args[1], ledger.ValidatorInput{
			ID:           args[2],
			IP:           validatorIP,
			Email:        validatorEmail,
			Organization: validatorOrg,
			CanSign:      validatorCanSign,
		})
	}),
}

var validatorGrantCmd = &cobra.Command{
	Use:   "grant PROJECT FILE_HASH VALIDATOR_ID",
	Short: "Restore a validator's access",
	Args:  cobra.ExactArgs(3),
	RunE: withApp("AddValidatorAccess", func(ctx context.Context, a *app.DocLedgerApp, args []string) (any, error) {
		return a.Ledger().AddValidatorAccess(ctx, args[0], args[1], args[2], validatorEmail)
	}),
}

var validatorRevokeCmd = &cobra.Command{
	Use:   "revoke PROJECT FILE_HASH VALIDATOR_ID",
	Short: "Revoke a validator's access",
	Args:  cobra.ExactArgs(3),
	RunE: withApp("RemoveValidatorAccess", func(ctx context.Context, a *app.DocLedgerApp, args []string) (any, error) {
		return a.Ledger().RemoveValidatorAccess(ctx, args[0], args[1], args[2], validatorEmail)
	}),
}

var validatorValidateCmd = &cobra.Command{
	Use:   "validate PROJECT FILE_HASH EMAIL STATUS",
	Short: "Record a validator's verdict on a file",
	Args:  cobra.ExactArgs(4),
	RunE: withApp("UpdateValidatorAfterFileValidation", func(ctx context.Context, a *app.DocLedgerApp, args []string) (any, error) {
		return a.Ledger().UpdateValidatorAfterFileValidation(ctx, args[0], args[1], args[2], ledger.FileStatus(args[3]))
	}),
}

// supplier

var supplierInput ledger.SupplierInput

var supplierCmd = &cobra.Command{
	Use:   "supplier",
	Short: "Manage suppliers",
}

var supplierAddCmd = &cobra.Command{
	Use:   "add PROJECT EMAIL",
	Short: "Add a supplier keyed by email",
	Args:  cobra.ExactArgs(2),
	RunE: withApp("AddSupplier", func(ctx context.Context, a *app.DocLedgerApp, args []string) (any, error) {
		in := supplierInput
		in.SupplierEmail = args[1]
		return a.Ledger().AddSupplier(ctx, args[0], in)
	}),
}

// history

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View the transaction journal, newest first",
	Args:  cobra.NoArgs,
	RunE: withApp("History", func(ctx context.Context, a *app.DocLedgerApp, _ []string) (any, error) {
		return a.Ledger().History(ctx, historyLimit)
	}),
}

func init() {
	projectAddCmd.Flags().StringVar(&projectCreatedBy, "created-by", "", "Creator recorded on the project (default: operator id)")
	projectCmd.AddCommand(projectAddCmd, projectQueryCmd, projectShowCmd)

	folderAddCmd.Flags().StringVar(&folderProjectID, "project-id", "", "Project id folded into the folder hash (default: PROJECT)")
	subFolderAddCmd.Flags().StringVar(&folderProjectID, "project-id", "", "Project id recorded on the sub folder (default: PROJECT)")
	folderCmd.AddCommand(folderAddCmd)
	subFolderCmd.AddCommand(subFolderAddCmd)

	userCmd.AddCommand(userAddCmd, userGrantCmd, userRevokeCmd)

	fileAddCmd.Flags().StringVar(&fileTitle, "title", "", "File title")
	fileAddCmd.Flags().StringVar(&fileUser, "user", "", "Uploading user id")
	fileAddCmd.Flags().StringVar(&fileFolder, "folder", "", "Folder id")
	fileAddCmd.Flags().StringVar(&fileExpiry, "expiry", "", "Expiry date, stored verbatim")
	fileCmd.AddCommand(fileAddCmd, fileAcceptCmd, fileRejectCmd, fileUpdateCmd)

	validatorAddCmd.Flags().StringVar(&validatorEmail, "email", "", "Validator email")
	validatorAddCmd.Flags().StringVar(&validatorIP, "ip", "", "Validator IP")
	validatorAddCmd.Flags().StringVar(&validatorOrg, "org", "", "Validator organization")
	validatorAddCmd.Flags().StringVar(&validatorCanSign, "can-sign", "false", "Signing flag, stored verbatim")
	for _, c := range []*cobra.Command{validatorGrantCmd, validatorRevokeCmd} {
		c.Flags().StringVar(&validatorEmail, "email", "", "Validator email (informational)")
	}
	validatorCmd.AddCommand(validatorAddCmd, validatorGrantCmd, validatorRevokeCmd, validatorValidateCmd)

	supplierAddCmd.Flags().StringVar(&supplierInput.Category, "category", "", "Supplier category")
	supplierAddCmd.Flags().StringVar(&supplierInput.ContactName, "contact", "", "Contact name")
	supplierAddCmd.Flags().StringVar(&supplierInput.SupplierID, "id", "", "Supplier id")
	supplierAddCmd.Flags().StringVar(&supplierInput.CompanyName, "company", "", "Company name")
	supplierAddCmd.Flags().StringVar(&supplierInput.CompanyWebsite, "website", "", "Company website")
	supplierAddCmd.Flags().StringVar(&supplierInput.RequestedDocuments, "documents", "", "Requested documents")
	supplierCmd.AddCommand(supplierAddCmd)

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 50, "Maximum number of transactions to show (0 for all)")
}
