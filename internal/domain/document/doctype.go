package document

// DocType identifies a business document family
type DocType string

const (
	DocTypeProformaInvoice     DocType = "PROFORMA_INVOICE"
	DocTypeFinalInvoice        DocType = "FINAL_INVOICE"
	DocTypePackingList         DocType = "PACKING_LIST"
	DocTypeSalesContract       DocType = "SALES_CONTRACT"
	DocTypeWarrantyCertificate DocType = "WARRANTY_CERTIFICATE"
	DocTypeCoverPage           DocType = "COVER_PAGE"
)

// AllDocTypes returns all supported document types
func AllDocTypes() []DocType {
	return []DocType{
		DocTypeProformaInvoice,
		DocTypeFinalInvoice,
		DocTypePackingList,
		DocTypeSalesContract,
		DocTypeWarrantyCertificate,
		DocTypeCoverPage,
	}
}

// IsValid checks if the document type is valid
func (d DocType) IsValid() bool {
	switch d {
	case DocTypeProformaInvoice, DocTypeFinalInvoice, DocTypePackingList,
		DocTypeSalesContract, DocTypeWarrantyCertificate, DocTypeCoverPage:
		return true
	}
	return false
}

// DisplayName returns the human-readable name of the document type
func (d DocType) DisplayName() string {
	switch d {
	case DocTypeProformaInvoice:
		return "Proforma Invoice"
	case DocTypeFinalInvoice:
		return "Final Invoice"
	case DocTypePackingList:
		return "Packing List"
	case DocTypeSalesContract:
		return "Sales Contract"
	case DocTypeWarrantyCertificate:
		return "Warranty Certificate"
	case DocTypeCoverPage:
		return "Cover Page"
	default:
		return string(d)
	}
}

// TemplateBaseName returns the canonical template file name for the type.
// Templates live under <templates_root>/<language_code>/<base name>.
func (d DocType) TemplateBaseName() string {
	switch d {
	case DocTypeProformaInvoice:
		return "proforma_invoice_template.html"
	case DocTypeFinalInvoice:
		return "final_invoice_template.html"
	case DocTypePackingList:
		return "packing_list_template.html"
	case DocTypeSalesContract:
		return "sales_contract_template.html"
	case DocTypeWarrantyCertificate:
		return "warranty_certificate_template.html"
	case DocTypeCoverPage:
		return "cover_page_template.html"
	default:
		return ""
	}
}
