package domain

// Permission names carried in the access token.
const (
	PermissionCampaignCreate       = "campaignCreate"
	PermissionCampaignEdit         = "campaignEdit"
	PermissionCampaignDestroy      = "campaignDestroy"
	PermissionCampaignImport       = "campaignImport"
	PermissionCampaignAutocomplete = "campaignAutocomplete"
	PermissionCampaignRead         = "campaignRead"
	PermissionCampaignSend         = "campaignSend"

	PermissionCampaignInstanceRead = "campaignInstanceRead"

	PermissionCampaignInstanceEmailsCreate = "campaignInstanceEmailsCreate"
	PermissionCampaignInstanceEmailsEdit   = "campaignInstanceEmailsEdit"
	PermissionCampaignInstanceEmailsRead   = "campaignInstanceEmailsRead"
	PermissionCampaignInstanceEmailsImport = "campaignInstanceEmailsImport"
)
