// Package dotenv loads .env files into an environment store and exposes the
// result as a configuration provider.
//
// Files are parsed with github.com/joho/godotenv in the order given; later
// files override earlier ones. Variables that were already set before the
// first file was read are never overwritten. A file that cannot be read or
// parsed is logged as a warning and contributes nothing.
package dotenv
