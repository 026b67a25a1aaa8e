package classify

import "docqa/docstore"

// signal is a data-driven description of one document type's
// classification cues (spec §9 redesign guidance: the signal table is
// data, not code, so new types/locales are added by editing this
// table).
type signal struct {
	Type          docstore.DocType
	FilenameWords []string
	MetadataKeys  []string
	BodyKeywords  []string
}

var signals = []signal{
	{
		Type:          docstore.TypeInvoice,
		FilenameWords: []string{"invoice", "fatura"},
		MetadataKeys:  []string{"invoice_no", "fatura_no", "invoice_number"},
		BodyKeywords:  []string{"invoice", "fatura", "kdv", "toplam tutar", "fatura no", "invoice number"},
	},
	{
		Type:          docstore.TypeQuote,
		FilenameWords: []string{"quote", "quotation", "teklif", "proforma"},
		MetadataKeys:  []string{"quote_no", "teklif_no"},
		BodyKeywords:  []string{"quotation", "teklif", "proforma", "quote no", "valid until", "geçerlilik"},
	},
	{
		Type:          docstore.TypeReceipt,
		FilenameWords: []string{"receipt", "fis", "fiş"},
		MetadataKeys:  []string{"receipt_no", "fis_no"},
		BodyKeywords:  []string{"receipt", "fiş", "cash register", "yazar kasa", "change due"},
	},
	{
		Type:          docstore.TypeWaybill,
		FilenameWords: []string{"waybill", "irsaliye", "delivery_note", "shipment"},
		MetadataKeys:  []string{"waybill_no", "irsaliye_no"},
		BodyKeywords:  []string{"waybill", "irsaliye", "delivery note", "sevk", "consignee"},
	},
	{
		Type:          docstore.TypeContract,
		FilenameWords: []string{"contract", "sozlesme", "sözleşme", "agreement"},
		MetadataKeys:  []string{"contract_no", "sozlesme_no"},
		BodyKeywords:  []string{"agreement", "sözleşme", "taraflar", "whereas", "termination", "fesih"},
	},
}
