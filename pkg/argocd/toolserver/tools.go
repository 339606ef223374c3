// Copyright 2026 © The Argonaut Authors
// SPDX-License-Identifier: Apache-2.0

package toolserver

import "net/http"

// param describes a string argument that maps onto an API query parameter.
// Query defaults to Arg when empty.
type param struct {
	Arg         string
	Query       string
	Description string
}

// toolDef describes one ArgoCD API operation exposed as an MCP tool.
// Tools named after the ArgoCD gRPC services keep the model's view of the
// API aligned with the upstream documentation.
type toolDef struct {
	Name        string
	Description string
	Method      string
	Path        string
	Params      []param
	HasBody     bool
	BodyDesc    string
}

// catalog lists every tool the server registers, grouped by service.
var catalog = []toolDef{
	// Account
	{
		Name:        "AccountService_ListAccounts",
		Description: "ListAccounts returns the list of accounts",
		Method:      http.MethodGet,
		Path:        "/api/v1/account",
	},
	{
		Name:        "AccountService_UpdatePassword",
		Description: "UpdatePassword updates an account's password to a new value",
		Method:      http.MethodPut,
		Path:        "/api/v1/account/password",
		HasBody:     true,
		BodyDesc:    "JSON payload with name, currentPassword and newPassword",
	},

	// Applications
	{
		Name:        "ApplicationService_List",
		Description: "List returns list of applications",
		Method:      http.MethodGet,
		Path:        "/api/v1/applications",
		Params: []param{
			{Arg: "name", Description: "The application name"},
			{Arg: "refresh", Description: "Forces application reconciliation if set to 'hard'"},
			{Arg: "projects", Description: "The project names to restrict returned list applications"},
			{Arg: "resourceVersion", Description: "When specified with a watch call, shows changes that occur after that particular version of a resource"},
			{Arg: "selector", Description: "The selector to restrict returned list to applications only with matched labels"},
			{Arg: "repo", Description: "The repoURL to restrict returned list applications"},
			{Arg: "appNamespace", Description: "The application namespace"},
			{Arg: "project", Description: "The project name to restrict returned list applications"},
		},
	},
	{
		Name:        "ApplicationService_Create",
		Description: "Create creates an application",
		Method:      http.MethodPost,
		Path:        "/api/v1/applications",
		HasBody:     true,
		BodyDesc:    "JSON application manifest",
		Params: []param{
			{Arg: "upsert", Description: "Whether to update the application if it already exists"},
			{Arg: "validate", Description: "Whether to validate the application spec"},
		},
	},
	{
		Name:        "ApplicationService_GetManifestsWithFiles",
		Description: "GetManifestsWithFiles returns application manifests using provided files to generate them",
		Method:      http.MethodPost,
		Path:        "/api/v1/applications/manifestsWithFiles",
		HasBody:     true,
		BodyDesc:    "JSON manifest query with attached files",
	},
	{
		Name:        "ApplicationService_Watch",
		Description: "Watch returns stream of application change events",
		Method:      http.MethodGet,
		Path:        "/api/v1/stream/applications",
		Params: []param{
			{Arg: "name", Description: "The application name"},
			{Arg: "resourceVersion", Description: "Shows changes that occur after that particular version of a resource"},
			{Arg: "projects", Description: "The project names to restrict returned list applications"},
			{Arg: "selector", Description: "The selector to restrict returned list to applications only with matched labels"},
			{Arg: "repo", Description: "The repoURL to restrict returned list applications"},
			{Arg: "appNamespace", Description: "The application namespace"},
			{Arg: "project", Description: "The project name to restrict returned list applications"},
		},
	},

	// ApplicationSets
	{
		Name:        "ApplicationSetService_List",
		Description: "List returns list of applicationset",
		Method:      http.MethodGet,
		Path:        "/api/v1/applicationsets",
		Params: []param{
			{Arg: "projects", Description: "The project names to restrict returned list applicationsets"},
			{Arg: "selector", Description: "The selector to restrict returned list to applicationsets only with matched labels"},
			{Arg: "appsetNamespace", Description: "The applicationset namespace"},
		},
	},
	{
		Name:        "ApplicationSetService_Create",
		Description: "Create creates an applicationset",
		Method:      http.MethodPost,
		Path:        "/api/v1/applicationsets",
		HasBody:     true,
		BodyDesc:    "JSON applicationset manifest",
		Params: []param{
			{Arg: "upsert", Description: "Whether to update the applicationset if it already exists"},
			{Arg: "dryRun", Description: "Whether to perform a dry run"},
		},
	},
	{
		Name:        "ApplicationSetService_Generate",
		Description: "Generate generates the apps of an applicationset without creating them",
		Method:      http.MethodPost,
		Path:        "/api/v1/applicationsets/generate",
		HasBody:     true,
		BodyDesc:    "JSON applicationset spec to generate from",
	},

	// Certificates
	{
		Name:        "CertificateService_ListCertificates",
		Description: "List all available repository certificates",
		Method:      http.MethodGet,
		Path:        "/api/v1/certificates",
		Params: []param{
			{Arg: "hostNamePattern", Description: "A file-glob pattern to match against the host name of the certificate"},
			{Arg: "certType", Description: "The type of the certificate to match (ssh or https)"},
			{Arg: "certSubType", Description: "The sub type of the certificate to match"},
		},
	},
	{
		Name:        "CertificateService_CreateCertificate",
		Description: "Creates repository certificates on the server",
		Method:      http.MethodPost,
		Path:        "/api/v1/certificates",
		HasBody:     true,
		BodyDesc:    "JSON repository certificate list",
		Params: []param{
			{Arg: "upsert", Description: "Whether to upsert already existing certificates"},
		},
	},
	{
		Name:        "CertificateService_DeleteCertificate",
		Description: "Delete the certificates that match the RepositoryCertificateQuery",
		Method:      http.MethodDelete,
		Path:        "/api/v1/certificates",
		Params: []param{
			{Arg: "hostNamePattern", Description: "A file-glob pattern to match against the host name of the certificate"},
			{Arg: "certType", Description: "The type of the certificate to match (ssh or https)"},
			{Arg: "certSubType", Description: "The sub type of the certificate to match"},
		},
	},

	// Clusters
	{
		Name:        "ClusterService_List",
		Description: "List returns list of clusters",
		Method:      http.MethodGet,
		Path:        "/api/v1/clusters",
		Params: []param{
			{Arg: "server", Description: "The cluster server URL"},
			{Arg: "name", Description: "The cluster name"},
			{Arg: "idType", Query: "id.type", Description: "Type of the cluster identifier (server or name)"},
			{Arg: "idValue", Query: "id.value", Description: "Value of the cluster identifier"},
		},
	},
	{
		Name:        "ClusterService_Create",
		Description: "Create creates a cluster",
		Method:      http.MethodPost,
		Path:        "/api/v1/clusters",
		HasBody:     true,
		BodyDesc:    "JSON cluster configuration",
		Params: []param{
			{Arg: "upsert", Description: "Whether to update the cluster if it already exists"},
		},
	},

	// GPG keys
	{
		Name:        "GPGKeyService_List",
		Description: "List all available repository certificates",
		Method:      http.MethodGet,
		Path:        "/api/v1/gpgkeys",
		Params: []param{
			{Arg: "keyID", Description: "The GPG key ID to query for"},
		},
	},
	{
		Name:        "GPGKeyService_Create",
		Description: "Create one or more GPG public keys in the server's configuration",
		Method:      http.MethodPost,
		Path:        "/api/v1/gpgkeys",
		HasBody:     true,
		BodyDesc:    "JSON GPG public key payload",
		Params: []param{
			{Arg: "upsert", Description: "Whether to upsert already existing public keys"},
		},
	},
	{
		Name:        "GPGKeyService_Delete",
		Description: "Delete specified GPG public key from the server's configuration",
		Method:      http.MethodDelete,
		Path:        "/api/v1/gpgkeys",
		Params: []param{
			{Arg: "keyID", Description: "The GPG key ID to delete"},
		},
	},

	// Notifications
	{
		Name:        "NotificationService_ListServices",
		Description: "List returns list of notification services",
		Method:      http.MethodGet,
		Path:        "/api/v1/notifications/services",
	},
	{
		Name:        "NotificationService_ListTemplates",
		Description: "List returns list of notification templates",
		Method:      http.MethodGet,
		Path:        "/api/v1/notifications/templates",
	},
	{
		Name:        "NotificationService_ListTriggers",
		Description: "List returns list of notification triggers",
		Method:      http.MethodGet,
		Path:        "/api/v1/notifications/triggers",
	},

	// Projects
	{
		Name:        "ProjectService_List",
		Description: "List returns list of projects",
		Method:      http.MethodGet,
		Path:        "/api/v1/projects",
		Params: []param{
			{Arg: "name", Description: "The project name"},
		},
	},
	{
		Name:        "ProjectService_Create",
		Description: "Create a new project",
		Method:      http.MethodPost,
		Path:        "/api/v1/projects",
		HasBody:     true,
		BodyDesc:    "JSON project manifest",
	},

	// Repository credentials
	{
		Name:        "RepoCredsService_ListRepositoryCredentials",
		Description: "ListRepositoryCredentials gets a list of all configured repository credential sets",
		Method:      http.MethodGet,
		Path:        "/api/v1/repocreds",
		Params: []param{
			{Arg: "url", Description: "Repo URL for query"},
		},
	},
	{
		Name:        "RepoCredsService_CreateRepositoryCredentials",
		Description: "CreateRepositoryCredentials creates a new repository credential set",
		Method:      http.MethodPost,
		Path:        "/api/v1/repocreds",
		HasBody:     true,
		BodyDesc:    "JSON repository credentials",
		Params: []param{
			{Arg: "upsert", Description: "Whether to create in upsert mode"},
		},
	},
	{
		Name:        "RepoCredsService_ListWriteRepositoryCredentials",
		Description: "ListWriteRepositoryCredentials gets a list of all configured write repository credential sets",
		Method:      http.MethodGet,
		Path:        "/api/v1/write-repocreds",
		Params: []param{
			{Arg: "url", Description: "Repo URL for query"},
		},
	},
	{
		Name:        "RepoCredsService_CreateWriteRepositoryCredentials",
		Description: "CreateWriteRepositoryCredentials creates a new write repository credential set",
		Method:      http.MethodPost,
		Path:        "/api/v1/write-repocreds",
		HasBody:     true,
		BodyDesc:    "JSON repository credentials",
		Params: []param{
			{Arg: "upsert", Description: "Whether to create in upsert mode"},
		},
	},

	// Repositories
	{
		Name:        "RepositoryService_ListRepositories",
		Description: "ListRepositories gets a list of all configured repositories",
		Method:      http.MethodGet,
		Path:        "/api/v1/repositories",
		Params: []param{
			{Arg: "repo", Description: "Repo URL for query"},
			{Arg: "forceRefresh", Description: "Whether to force a cache refresh on repo's connection state"},
			{Arg: "appProject", Description: "The associated project project"},
		},
	},
	{
		Name:        "RepositoryService_CreateRepository",
		Description: "CreateRepository creates a new repository configuration",
		Method:      http.MethodPost,
		Path:        "/api/v1/repositories",
		HasBody:     true,
		BodyDesc:    "JSON repository configuration",
		Params: []param{
			{Arg: "upsert", Description: "Whether to create in upsert mode"},
			{Arg: "credsOnly", Description: "Whether to operate on credential set instead of repository"},
		},
	},
	{
		Name:        "RepositoryService_ListWriteRepositories",
		Description: "ListWriteRepositories gets a list of all configured write repositories",
		Method:      http.MethodGet,
		Path:        "/api/v1/write-repositories",
		Params: []param{
			{Arg: "repo", Description: "Repo URL for query"},
			{Arg: "forceRefresh", Description: "Whether to force a cache refresh on repo's connection state"},
			{Arg: "appProject", Description: "The associated project project"},
		},
	},
	{
		Name:        "RepositoryService_CreateWriteRepository",
		Description: "CreateWriteRepository creates a new write repository configuration",
		Method:      http.MethodPost,
		Path:        "/api/v1/write-repositories",
		HasBody:     true,
		BodyDesc:    "JSON repository configuration",
		Params: []param{
			{Arg: "upsert", Description: "Whether to create in upsert mode"},
			{Arg: "credsOnly", Description: "Whether to operate on credential set instead of repository"},
		},
	},

	// Session
	{
		Name:        "SessionService_Create",
		Description: "Create a new JWT for authentication and set a cookie if using HTTP",
		Method:      http.MethodPost,
		Path:        "/api/v1/session",
		HasBody:     true,
		BodyDesc:    "JSON session request with username and password",
	},
	{
		Name:        "SessionService_Delete",
		Description: "Delete an existing JWT cookie if using HTTP",
		Method:      http.MethodDelete,
		Path:        "/api/v1/session",
	},
	{
		Name:        "SessionService_GetUserInfo",
		Description: "Get the current user's userinfo",
		Method:      http.MethodGet,
		Path:        "/api/v1/session/userinfo",
	},

	// Settings
	{
		Name:        "SettingsService_Get",
		Description: "Get returns Argo CD settings",
		Method:      http.MethodGet,
		Path:        "/api/v1/settings",
	},
	{
		Name:        "SettingsService_GetPlugins",
		Description: "Get returns Argo CD plugins",
		Method:      http.MethodGet,
		Path:        "/api/v1/settings/plugins",
	},

	// Version
	{
		Name:        "VersionService_Version",
		Description: "Version returns version information of the API server",
		Method:      http.MethodGet,
		Path:        "/api/version",
	},
}
