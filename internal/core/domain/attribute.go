package domain

import "time"

// AttributeGroup partitions attribute definitions for per-field access
// resolution. Identity, contact and safety groups are visible to every
// direct-service role; clinical requires a role whose clinical capability is
// not denied.
type AttributeGroup string

const (
	GroupIdentity AttributeGroup = "identity"
	GroupContact  AttributeGroup = "contact"
	GroupSafety   AttributeGroup = "safety"
	GroupClinical AttributeGroup = "clinical"
)

// AttributeDefinition describes one custom field on a client record.
type AttributeDefinition struct {
	Key   string         `json:"key"`
	Label string         `json:"label"`
	Group AttributeGroup `json:"group"`
	// Encrypted marks personally identifying values that pass through the
	// field cipher on every read and write.
	Encrypted bool `json:"encrypted"`
	// DVSensitive values are omitted on read and rejected on write for the
	// front-desk role while the client's DV-safe flag is set.
	DVSensitive bool `json:"dv_sensitive"`
}

// AttributeValue is one stored value. Value is plaintext in memory; the
// repository stores ciphertext for encrypted definitions.
type AttributeValue struct {
	ClientID  string    `json:"client_id"`
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedBy string    `json:"updated_by"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultAttributeDefinitions is the baseline catalogue seeded at startup.
// Deployments extend it; nothing ever mutates the Encrypted flag of an
// existing definition once values have been written under it.
var DefaultAttributeDefinitions = []AttributeDefinition{
	{Key: "legal_name", Label: "Legal name", Group: GroupIdentity, Encrypted: true},
	{Key: "date_of_birth", Label: "Date of birth", Group: GroupIdentity, Encrypted: true},
	{Key: "government_id", Label: "Government ID", Group: GroupIdentity, Encrypted: true},
	{Key: "phone", Label: "Phone", Group: GroupContact, Encrypted: true, DVSensitive: true},
	{Key: "email", Label: "Email", Group: GroupContact, Encrypted: true, DVSensitive: true},
	{Key: "home_address", Label: "Home address", Group: GroupContact, Encrypted: true, DVSensitive: true},
	{Key: "emergency_contact", Label: "Emergency contact", Group: GroupSafety, Encrypted: true, DVSensitive: true},
	{Key: "safety_notes", Label: "Safety notes", Group: GroupSafety, Encrypted: true, DVSensitive: true},
	{Key: "diagnosis", Label: "Diagnosis", Group: GroupClinical, Encrypted: true},
	{Key: "medications", Label: "Medications", Group: GroupClinical, Encrypted: true},
	{Key: "preferred_language", Label: "Preferred language", Group: GroupIdentity},
	{Key: "pronouns", Label: "Pronouns", Group: GroupIdentity},
}
