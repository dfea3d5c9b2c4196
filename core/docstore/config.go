package docstore

// Config holds configuration for the remote document database.
type Config struct {
	// ProjectID is the Google Cloud project that owns the Firestore database.
	ProjectID string `mapstructure:"project_id" default:"crowdmarks"`
	// CredentialsFile is a service account key. Empty uses default credentials.
	CredentialsFile string `mapstructure:"credentials_file" default:""`
	// EmulatorHost points the client at a local Firestore emulator (host:port).
	EmulatorHost string `mapstructure:"emulator_host" default:""`
	// PinsCollection is the collection holding Pin records.
	PinsCollection string `mapstructure:"pins_collection" default:"markers"`
	// MessagesCollection is the collection holding discussion board messages.
	MessagesCollection string `mapstructure:"messages_collection" default:"messages"`
}
