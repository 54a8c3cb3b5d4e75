package models

import (
	"kycore/pkg/domain"
	"kycore/pkg/query"
	"kycore/pkg/repository"
)

// Filters select users. Unset fields do not constrain the query.
type Filters struct {
	repository.BaseFilters
	Email     query.Filter[domain.Email]
	KYCStatus query.Filter[domain.Enum[KYCStatus]]
	Metadata  query.Filter[domain.Document]
}

func (f Filters) Conditions() query.Conditions {
	cs := f.BaseFilters.Conditions()
	cs.Add("email", f.Email)
	cs.Add("kyc_status", f.KYCStatus)
	cs.Add("metadata", f.Metadata)
	return cs
}
