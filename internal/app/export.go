package app

import (
	"fmt"
	"os"
)

// Export writes a complete snapshot of the history database to destPath.
// The snapshot is taken with VACUUM INTO, so it is a consistent standalone
// database file. When encrypt is true the snapshot is age-encrypted with
// the configured public key; the key pair is generated on first use via
// SetupKeys.
//
// Export is only supported for the sqlite backend.
func (a *App) Export(destPath string, encrypt bool) error {
	if !encrypt {
		if err := a.store.BackupTo(destPath); err != nil {
			return err
		}
		a.logger.Info("history exported", "path", destPath)
		return nil
	}

	if !a.encryptor.IsConfigured() {
		return fmt.Errorf("export keys not configured: run 'fastpin export setup' first")
	}

	tmpFile, err := os.CreateTemp("", "fastpin-export-*.db")
	if err != nil {
		return fmt.Errorf("creating temp file for export: %w", err)
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()
	defer os.Remove(tmpPath)

	if err := a.store.BackupTo(tmpPath); err != nil {
		return err
	}

	src, err := os.Open(tmpPath)
	if err != nil {
		return fmt.Errorf("opening export snapshot: %w", err)
	}
	defer src.Close()

	dst, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	defer dst.Close()

	if err := a.encryptor.Encrypt(src, dst); err != nil {
		return err
	}

	a.logger.Info("history exported", "path", destPath, "encrypted", true)
	return nil
}

// SetupKeys generates the export key pair, protecting the private key with
// the passphrase.
func (a *App) SetupKeys(passphrase string) error {
	return a.encryptor.Setup(passphrase)
}

// DecryptExport decrypts an age-encrypted export archive. The passphrase
// unlocks the private key.
func (a *App) DecryptExport(srcPath, destPath, passphrase string) error {
	dc, err := a.encryptor.Unlock(passphrase)
	if err != nil {
		return err
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("opening encrypted export: %w", err)
	}
	defer src.Close()

	dst, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("creating decrypted file: %w", err)
	}
	defer dst.Close()

	return dc.Decrypt(src, dst)
}
