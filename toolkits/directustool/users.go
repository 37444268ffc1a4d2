package directustool

import (
	"context"

	agenttool "github.com/marceldarvas/n8n-nodes-directus-sub000"
	"github.com/marceldarvas/n8n-nodes-directus-sub000/directus"
)

// UserManagementName is the name of the user management tool.
const UserManagementName = "directus_create_user"

var userStatuses = []any{"active", "invited", "draft", "suspended", "archived"}

var userManagementParams = agenttool.Parameters{
	agenttool.Param("email", agenttool.String("Email address of the user").AsRequired()),
	agenttool.Param("password", agenttool.String("Initial password; omit when sending an invite")),
	agenttool.Param("first_name", agenttool.String("First name")),
	agenttool.Param("last_name", agenttool.String("Last name")),
	agenttool.Param("role", agenttool.String("Role id to assign")),
	agenttool.Param("status", agenttool.String("Account status").WithEnum(userStatuses...).WithDefault("active")),
	agenttool.Param("send_invite", agenttool.Boolean("Send an invitation email instead of creating the user directly").WithDefault(false)),
	agenttool.Param("invite_url", agenttool.String("Custom accept-invite URL (must be allow-listed in Directus)")),
}

// NewUserManagement returns the tool that creates or invites Directus users.
func NewUserManagement(client Client, opts ...agenttool.ToolOption) (agenttool.Tool, error) {
	cfg := agenttool.ToolConfig{
		Name:        UserManagementName,
		Description: "Create a Directus user, or invite one by email.",
		Category:    CategoryUsers,
		Parameters:  userManagementParams,
		Examples: []agenttool.Example{
			{Description: "Create an active editor", Arguments: map[string]any{"email": "ada@example.com", "first_name": "Ada", "role": "editor-role-id"}},
			{Description: "Invite a user", Arguments: map[string]any{"email": "bob@example.com", "role": "editor-role-id", "send_invite": true}},
		},
	}
	run := func(ctx context.Context, params map[string]any) (any, error) {
		args := agenttool.Args(params)
		email := args.String("email")
		if args.Bool("send_invite") {
			role := args.String("role")
			if role == "" {
				return nil, agenttool.NewError(agenttool.CodeValidation, "role is required to send an invite")
			}
			if err := client.InviteUser(ctx, email, role, args.String("invite_url")); err != nil {
				return nil, err
			}
			return map[string]any{"invited": true, "email": email}, nil
		}
		user, err := client.CreateUser(ctx, directus.UserInput{
			Email:     email,
			Password:  args.String("password"),
			FirstName: args.String("first_name"),
			LastName:  args.String("last_name"),
			Role:      args.String("role"),
			Status:    args.String("status"),
		})
		if err != nil {
			return nil, err
		}
		return map[string]any{"user": user}, nil
	}
	return agenttool.New(cfg, run, opts...)
}
