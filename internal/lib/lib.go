// Packages lib acts as a library for modules that do not fit
// strictly into other layers.
//
// It contains the outbound HTTP plumbing shared by every provider
// (upstream), the Razorpay and Heroku API clients, and the identity
// token verifiers (Clerk and Firebase).
package lib
