package enums

// TransactionStatus is the lifecycle of a marketplace listing/transaction.
// Unknown values are carried through untouched.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusReserved  TransactionStatus = "reserved"
	TransactionStatusPaid      TransactionStatus = "paid"
	TransactionStatusShipped   TransactionStatus = "shipped"
	TransactionStatusDelivered TransactionStatus = "delivered"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusConfirmed TransactionStatus = "confirmed"
	TransactionStatusSold      TransactionStatus = "sold"
	TransactionStatusCancelled TransactionStatus = "cancelled"
	TransactionStatusRefunded  TransactionStatus = "refunded"
)
