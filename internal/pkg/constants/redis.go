package constants

// Redis key formats for the document backend. Every user-owned entity is one
// JSON document per key.
const (
	KeyUserProfile   = "user:%s:profile"      // Format: user:{user_id}:profile
	KeyUserCard      = "user:%s:card:%s"      // Format: user:{user_id}:card:{card_id}
	KeyUserCards     = "user:%s:card:*"       // SCAN pattern for a user's cards
	KeyUserBank      = "user:%s:bank:%s"      // Format: user:{user_id}:bank:{bank_id}
	KeyUserBanks     = "user:%s:bank:*"       // SCAN pattern for a user's bank accounts
	KeyUserTxn       = "user:%s:txn:%s"       // Format: user:{user_id}:txn:{txn_id}
	KeyUserTxns      = "user:%s:txn:*"        // SCAN pattern for a user's transactions
	KeyUserAgreement = "user:%s:agreement"    // Format: user:{user_id}:agreement
	KeyUserByEmail   = "user:email:%s"        // Format: user:email:{email} -> user_id
	KeyProperty      = "property:%s"          // Format: property:{property_id}
	KeyProperties    = "property:*"           // SCAN pattern for all properties
	KeyPropertyGeo   = "property:geo"         // GeoHash set of property locations
)

// Pub/sub channels for the document backend's realtime bridge.
const (
	ChannelProperties = "properties.changed"
	ChannelProperty   = "property.changed.%s" // Format: property.changed.{property_id}
)
