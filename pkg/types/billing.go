package types

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusOverdue PaymentStatus = "overdue"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// Unsettled reports whether a payment in this status is still open.
func (s PaymentStatus) Unsettled() bool {
	return s == PaymentStatusPending || s == PaymentStatusOverdue
}

type DiscountType string

const (
	DiscountTypeOneTime   DiscountType = "one-time"
	DiscountTypeEverytime DiscountType = "everytime"
)

func (d DiscountType) Valid() bool {
	return d == DiscountTypeOneTime || d == DiscountTypeEverytime
}

// BillingCommand names an operator-issued state transition recorded in the audit log.
type BillingCommand string

const (
	BillingCommandMarkPaid         BillingCommand = "mark_paid"
	BillingCommandMarkUnpaid       BillingCommand = "mark_unpaid"
	BillingCommandDeletePayment    BillingCommand = "delete_payment"
	BillingCommandAddSubscriber    BillingCommand = "add_subscriber"
	BillingCommandEditSubscriber   BillingCommand = "edit_subscriber"
	BillingCommandDeleteSubscriber BillingCommand = "delete_subscriber"
	BillingCommandAddPackage       BillingCommand = "add_package"
	BillingCommandEditPackage      BillingCommand = "edit_package"
	BillingCommandDeletePackage    BillingCommand = "delete_package"
	BillingCommandReconcile        BillingCommand = "reconcile"
	BillingCommandIssueCredential  BillingCommand = "issue_credential"
)

// DefaultDeletedPackageName is the snapshot name given to archived payments that carry none.
const DefaultDeletedPackageName = "Deleted Package"
