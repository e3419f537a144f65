// Package cert loads and generates the X.509 material the secure lane
// transport needs: one certificate per party, ordered by party id, plus
// this party's private key. In a closed MPC consortium the roster of
// certificates is distributed out of band and every party certificate
// doubles as a verification root.
package cert
