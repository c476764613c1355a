package ledger

import "context"

// SupplierInput carries the caller-supplied fields of a new supplier.
type SupplierInput struct {
	Category           string
	ContactName        string
	SupplierID         string
	SupplierEmail      string
	CompanyName        string
	CompanyWebsite     string
	RequestedDocuments string
}

// AddSupplier adds a supplier. Emails are unique per project.
func (s *Service) AddSupplier(ctx context.Context, projectHash string, in SupplierInput) (ReturnMessage, error) {
	return s.mutate(ctx, TypeAddSupplier, projectHash, func(p *Project, stamp UpdateLog) outcome {
		return addSupplier(p, stamp, in)
	})
}

func addSupplier(p *Project, stamp UpdateLog, in SupplierInput) outcome {
	if p.supplierIndex(in.SupplierEmail) >= 0 {
		return conflict(msgSupplierExists)
	}
	p.Suppliers = append(p.Suppliers, Supplier{
		Category:           in.Category,
		ContactName:        in.ContactName,
		SupplierID:         in.SupplierID,
		SupplierEmail:      in.SupplierEmail,
		CompanyName:        in.CompanyName,
		CompanyWebsite:     in.CompanyWebsite,
		RequestedDocuments: in.RequestedDocuments,
		UpdateLogs:         stamp,
	})
	return applied(msgSupplierAdded)
}
