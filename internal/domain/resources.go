package domain

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/robby/adminctl/internal/form"
)

// Resource names known to the console.
const (
	ResourceDepartment = "department"
	ResourceRole       = "role"
	ResourceMember     = "member"
)

var titleCaser = cases.Title(language.English)

// Title returns the display name of a resource or field key,
// e.g. "department" -> "Department", "first_name" -> "First Name".
func Title(name string) string {
	return titleCaser.String(strings.ReplaceAll(name, "_", " "))
}

var catalog = map[string]Resource{
	ResourceDepartment: {
		Name:         ResourceDepartment,
		PrimaryField: "id",
		Columns: []Column{
			{Key: "id", Label: "ID", Kind: ColumnNumber, Width: 6},
			{Key: "name", Label: "Name", Width: 24},
			{Key: "description", Label: "Description"},
			{Key: "created_at", Label: "Created", Kind: ColumnDate, Width: 16},
		},
		Fields: []form.Field{
			form.TextField{Key: "name", Title: "Name", Group: "Department", Validators: []form.Rule{
				form.Required("Department name is required"),
			}},
			form.TextField{Key: "description", Title: "Description", Group: "Department"},
		},
	},
	ResourceRole: {
		Name:         ResourceRole,
		PrimaryField: "id",
		Columns: []Column{
			{Key: "id", Label: "ID", Kind: ColumnNumber, Width: 6},
			{Key: "name", Label: "Name", Width: 20},
			{Key: "description", Label: "Description"},
			{Key: "created_at", Label: "Created", Kind: ColumnDate, Width: 16},
		},
		Fields: []form.Field{
			form.TextField{Key: "name", Title: "Name", Validators: []form.Rule{
				form.Required("Role name is required"),
				form.Pattern(`^[A-Za-z][A-Za-z0-9 _-]*$`, "Role name must start with a letter"),
			}},
			form.TextField{Key: "description", Title: "Description"},
			form.Checkbox{Key: "can_read", Title: "Read", Group: "Permissions", Initial: true},
			form.Checkbox{Key: "can_write", Title: "Write", Group: "Permissions"},
			form.Checkbox{Key: "can_delete", Title: "Delete", Group: "Permissions"},
		},
	},
	ResourceMember: {
		Name:         ResourceMember,
		PrimaryField: "id",
		Columns: []Column{
			{Key: "id", Label: "ID", Kind: ColumnNumber, Width: 6},
			{Key: "first_name", Label: "First name", Width: 14},
			{Key: "last_name", Label: "Last name", Width: 14},
			{Key: "email", Label: "Email"},
			{Key: "status", Label: "Status", Width: 10},
			{Key: "created_at", Label: "Joined", Kind: ColumnDate, Width: 16},
		},
		Fields: []form.Field{
			form.TextField{Key: "first_name", Title: "First name", Group: "Personal", Validators: []form.Rule{
				form.Required("First name is required"),
			}},
			form.TextField{Key: "last_name", Title: "Last name", Group: "Personal", Validators: []form.Rule{
				form.Required("Last name is required"),
			}},
			form.TextField{Key: "email", Title: "Email", Group: "Account", Validators: []form.Rule{
				form.Required("Email is required"),
				form.Email("Enter a valid email address"),
			}},
			form.Select{Key: "status", Title: "Status", Group: "Account", Options: []form.Option{
				{Value: "active", Label: "Active"},
				{Value: "inactive", Label: "Inactive"},
			}},
		},
	},
}

// LookupResource returns the resource definition registered under name.
func LookupResource(name string) (Resource, bool) {
	r, ok := catalog[name]
	return r, ok
}

// ResourceNames returns every known resource name in sorted order.
func ResourceNames() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
