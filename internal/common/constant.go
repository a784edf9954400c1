package common

// AccessTokenHeaderName is the HTTP header used to carry the primary-auth
// access token on outbound requests to the credential store.
const AccessTokenHeaderName = "Authorization"

// BearerPrefix prefixes the access token in AccessTokenHeaderName.
const BearerPrefix = "Bearer "
