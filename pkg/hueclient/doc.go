// Package hueclient is a thin typed wrapper over the lighting HTTP API:
// grouped lights and scenes addressed by UUID under
// "https://<host>/clip/v2/resource/". Self-signed certificates are
// accepted; every request carries a static "hue-application-key" header.
package hueclient
