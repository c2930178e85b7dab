package service

// defaultCatalog is inserted on first boot
var defaultCatalog = []CreateMenuInput{
	{
		MenuName: "Customer",
		ActionID: "customer",
		Buttons: []CreateButtonInput{
			{ActionID: "view_customer", ButtonName: "View customer"},
			{ActionID: "edit_customer", ButtonName: "Edit customer"},
		},
	},
	{
		MenuName: "Ticket",
		ActionID: "ticket",
		Buttons: []CreateButtonInput{
			{ActionID: "view_tickets", ButtonName: "View tickets"},
			{ActionID: "add_ticket", ButtonName: "Add ticket"},
			{ActionID: "edit_ticket", ButtonName: "Edit ticket"},
			{ActionID: "delete_ticket", ButtonName: "Delete ticket"},
			{ActionID: "view_details_ticket", ButtonName: "View details ticket"},
			{ActionID: "add_mouvement", ButtonName: "Add movement"},
			{ActionID: "assign_ticket", ButtonName: "Assign ticket"},
		},
	},
	{
		MenuName: "Employee",
		ActionID: "employee",
		Buttons: []CreateButtonInput{
			{ActionID: "view_employees", ButtonName: "View employees"},
			{ActionID: "add_employee", ButtonName: "Add employee"},
			{ActionID: "edit_employee", ButtonName: "Edit employee"},
			{ActionID: "delete_employee", ButtonName: "Delete employee"},
		},
	},
	{
		MenuName: "Role",
		ActionID: "role",
		Buttons: []CreateButtonInput{
			{ActionID: "view_roles", ButtonName: "View roles"},
			{ActionID: "add_role", ButtonName: "Add role"},
			{ActionID: "edit_role", ButtonName: "Edit role"},
			{ActionID: "delete_role", ButtonName: "Delete role"},
		},
	},
	{
		MenuName: "Invoice",
		ActionID: "invoice",
		Buttons: []CreateButtonInput{
			{ActionID: "view_invoices", ButtonName: "View invoices"},
		},
	},
	{
		MenuName: "Fund",
		ActionID: "fund",
		Buttons: []CreateButtonInput{
			{ActionID: "view_funds", ButtonName: "View funds"},
			{ActionID: "add_fund", ButtonName: "Add fund"},
			{ActionID: "edit_fund", ButtonName: "Edit fund"},
			{ActionID: "delete_fund", ButtonName: "Delete fund"},
			{ActionID: "view_details_fund", ButtonName: "View details fund"},
		},
	},
	{
		MenuName: "Store",
		ActionID: "store",
		Buttons: []CreateButtonInput{
			{ActionID: "view_stores", ButtonName: "View stores"},
			{ActionID: "add_store", ButtonName: "Add store"},
		},
	},
}
