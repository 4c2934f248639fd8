package enum

// ── Group A: State machines ──

// Order statuses. OrderStatusCancelled is only reachable through the explicit
// cancel action; the editor flow never sets it.
const (
	OrderStatusPending       = "pending"
	OrderStatusInPreparation = "in-preparation"
	OrderStatusServed        = "served"
	OrderStatusPaid          = "paid"
	OrderStatusCancelled     = "cancelled"
)

// EditorStatuses is the ordered progression a table's order walks through.
var EditorStatuses = []string{
	OrderStatusPending,
	OrderStatusInPreparation,
	OrderStatusServed,
	OrderStatusPaid,
}

// IsOrderStatus reports whether s is any known status, cancelled included.
func IsOrderStatus(s string) bool {
	return IsEditorStatus(s) || s == OrderStatusCancelled
}

// IsEditorStatus reports whether s can be set through the order editor.
func IsEditorStatus(s string) bool {
	for _, v := range EditorStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// NextStatus returns the status after s. Paid and unknown statuses stay put.
func NextStatus(s string) string {
	for i, v := range EditorStatuses {
		if v == s && i < len(EditorStatuses)-1 {
			return EditorStatuses[i+1]
		}
	}
	return s
}

// ── Group B: Slot keys (one JSON document per collection) ──

const (
	SlotOrders    = "orders"
	SlotMenuByDay = "menuByDay"
	SlotEmployees = "employees"
	SlotRoles     = "roles"
	SlotTables    = "tables"
)

// ── Group C: Editor / order fields ──

const (
	TabDetail  = "detail"
	TabCatalog = "catalog"
)

const (
	FieldCustomer = "customer"
	FieldNotes    = "notes"
	FieldEmployee = "employee"
	FieldStatus   = "status"
)

// ── Group D: Change feed ──

const (
	TopicOrders = "orders"
	TopicMenu   = "menu"
)

const (
	EventOrderCreated = "order.created"
	EventOrderUpdated = "order.updated"
	EventOrderDeleted = "order.deleted"
	EventTableAdded   = "table.added"
	EventTableRemoved = "table.removed"
	EventMenuUpdated  = "menu.updated"
)

// ── Group E: Report periods ──

const (
	PeriodDay   = "day"
	PeriodMonth = "month"
)
