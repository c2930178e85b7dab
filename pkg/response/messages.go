package response

// Generic
const (
	MsgServerError  = "serverError"
	MsgUnauthorized = "unauthorized"
	MsgForbidden    = "forbidden"
	MsgDataMissing  = "dataMissing"
	MsgNotFound     = "notFound"
	MsgNoToken      = "noToken"
	MsgInvalidID    = "invalidId"
	MsgInvalidToken = "invalidToken"
)

// Auth & users
const (
	MsgLoginSuccess       = "loginSuccess"
	MsgInvalidCredentials = "invalidCredentials"
	MsgPartnerAdded       = "partnerAddedSuccessfully"
	MsgEmployeeAdded      = "employeeAddedSuccessfully"
	MsgEmailAlreadyExists = "emailAlreadyExists"
	MsgPhoneAlreadyExists = "phoneAlreadyExists"
	MsgUserFetched        = "userFetchedSuccessfully"
	MsgRoleNotFound       = "roleNotFound"
)

// Roles
const (
	MsgRoleAdded    = "roleAddSuccess"
	MsgRolesFetched = "rolesFetchedSuccessfully"
	MsgRoleDeleted  = "roleDeletedSuccessfully"
	MsgRoleUpdated  = "roleUpdatedSuccessfully"
)

// Menus
const (
	MsgMenuUpdated         = "menuUpdatedSuccessfully"
	MsgMenuAdded           = "menuAddSuccess"
	MsgMenusFetched        = "menusFetchedSuccessfully"
	MsgMenuDeleted         = "menuDeletedSuccessfully"
	MsgMenuNotFound        = "menuNotFound"
	MsgButtonAlreadyExists = "buttonAlreadyExists"
	MsgMenuAlreadyExists   = "menuAlreadyExists"
	MsgPermissionsFetched  = "permissionsFetchedSuccessfully"
)

// Cash registers & movements
const (
	MsgCashRegisterAdded          = "cashRegisterAddedSuccessfully"
	MsgCashRegisterUpdated        = "cashRegisterUpdatedSuccessfully"
	MsgCashRegisterDeleted        = "cashRegisterDeletedSuccessfully"
	MsgCashRegistersFetched       = "cashRegistersFetchedSuccessfully"
	MsgUnableToDeleteMainRegister = "unableToDeleteMainCashRegister"
	MsgCashRegisterNameExist      = "cashRegisterNameExist"
	MsgMovementAdded              = "movementAddedSuccessfully"
	MsgMovementsFetched           = "movementsFetchedSuccessfully"
	MsgInvoiceAlreadyPaid         = "invoiceAlreadyPaid"
)

// Tickets, invoices, audit, statistics
const (
	MsgProductUpdated    = "productUpdatedSuccessfully"
	MsgInvoicesFetched   = "invoicesFetchedSuccessfully"
	MsgAuditLogsFetched  = "auditLogsFetchedSuccessfully"
	MsgStatisticsFetched = "statisticsFetchedSuccessfully"
)
